// Package report renders ForensicReports as markdown, JSON or PDF.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/models"
)

// Format is an output rendering.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatPDF      Format = "pdf"
)

// ParseFormat accepts "md", "markdown", "json" and "pdf".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown", "":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown report format: %s", s)
}

// ContentType is the HTTP media type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/markdown; charset=utf-8"
}

// Service renders reports.
type Service struct {
	logger arbor.ILogger
}

func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Render produces the report in the requested format.
func (s *Service) Render(r *models.ForensicReport, format Format) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("no report to render")
	}

	var (
		out []byte
		err error
	)
	switch format {
	case FormatMarkdown:
		out = []byte(Markdown(r))
	case FormatJSON:
		out, err = json.MarshalIndent(r, "", "  ")
	case FormatPDF:
		out, err = markdownToPDF(Markdown(r), fmt.Sprintf("Forensic report %s", r.Symbol))
	default:
		return nil, fmt.Errorf("unknown report format: %s", format)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", r.Symbol).Str("format", string(format)).Msg("Failed to render report")
		return nil, err
	}

	s.logger.Debug().
		Str("symbol", r.Symbol).
		Str("format", string(format)).
		Int("bytes", len(out)).
		Msg("Report rendered")
	return out, nil
}
