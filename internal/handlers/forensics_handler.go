package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/analysis"
	"github.com/ternarybob/scrutor/internal/services/report"
)

// ForensicsPrefix is the route prefix of the per-symbol report endpoints.
const ForensicsPrefix = "/api/forensics/"

// ForensicsHandler serves forensic reports
type ForensicsHandler struct {
	analyzer ReportAnalyzer
	renderer ReportRenderer
	logger   arbor.ILogger
}

// NewForensicsHandler creates a new ForensicsHandler
func NewForensicsHandler(analyzer ReportAnalyzer, renderer ReportRenderer, logger arbor.ILogger) *ForensicsHandler {
	return &ForensicsHandler{
		analyzer: analyzer,
		renderer: renderer,
		logger:   logger,
	}
}

// GetReportHandler handles GET /api/forensics/{symbol}. The cached report is
// returned when ?type= is given and one exists; otherwise, or with
// ?refresh=true, the symbol is analyzed first. ?format= selects md, json
// (default) or pdf.
func (h *ForensicsHandler) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	h.serve(w, r, false, r.URL.Query().Get("format"))
}

// AnalyzeHandler handles POST /api/forensics/{symbol}: always re-runs the analysis.
func (h *ForensicsHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	h.serve(w, r, true, r.URL.Query().Get("format"))
}

// PDFHandler handles GET /api/forensics/{symbol}/pdf
func (h *ForensicsHandler) PDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	h.serve(w, r, false, string(report.FormatPDF))
}

func (h *ForensicsHandler) serve(w http.ResponseWriter, r *http.Request, force bool, formatParam string) {
	symbol := PathParam(r.URL.Path, ForensicsPrefix)
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	format := report.FormatJSON
	if formatParam != "" {
		f, err := report.ParseFormat(formatParam)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	req, err := analysisRequest(r, symbol)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	refresh, err := QueryBool(r, "refresh")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "refresh must be true or false")
		return
	}
	if refresh != nil && *refresh {
		force = true
	}

	var rep *models.ForensicReport
	if !force && req.StatementType != "" {
		rep, err = h.analyzer.Report(r.Context(), symbol, req.StatementType)
		if err != nil && !errors.Is(err, models.ErrReportNotFound) {
			h.logger.Error().Err(err).Str("symbol", symbol).Msg("Failed to load cached report")
			WriteError(w, StatusForError(err), err.Error())
			return
		}
	}
	if rep == nil {
		rep, err = h.analyzer.Analyze(r.Context(), req)
		if err != nil {
			h.logger.Warn().Err(err).Str("symbol", symbol).Msg("Analysis failed")
			WriteError(w, StatusForError(err), err.Error())
			return
		}
	}

	out, err := h.renderer.Render(rep, format)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format == report.FormatPDF {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", strings.ToLower(symbol)+"-forensic.pdf"))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// analysisRequest reads ?type=, ?years=, ?company_type= and ?listed=.
func analysisRequest(r *http.Request, symbol string) (analysis.Request, error) {
	q := r.URL.Query()
	req := analysis.Request{Symbol: symbol, Years: QueryInt(r, "years", 0)}

	if s := q.Get("type"); s != "" {
		st, ok := models.ParseStatementType(s)
		if !ok {
			return req, fmt.Errorf("type must be standalone or consolidated")
		}
		req.StatementType = st
	}
	if s := q.Get("company_type"); s != "" {
		ct, ok := models.ParseCompanyType(s)
		if !ok {
			return req, fmt.Errorf("company_type must be manufacturing, service or emerging")
		}
		req.CompanyType = ct
	}
	listed, err := QueryBool(r, "listed")
	if err != nil {
		return req, fmt.Errorf("listed must be true or false")
	}
	req.Listed = listed
	return req, nil
}
