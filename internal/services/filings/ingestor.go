package filings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/metrics"
	"github.com/ternarybob/scrutor/internal/services/validation"
	"github.com/ternarybob/scrutor/internal/taxonomy"
	"github.com/ternarybob/scrutor/internal/xbrl"
)

// annualMinDays separates a full-year duration from a quarter when the
// filing does not tag its reporting quarter.
const annualMinDays = 300

// Extensions accepted by IngestDir.
var filingExtensions = map[string]bool{
	".xml":   true,
	".xbrl":  true,
	".html":  true,
	".htm":   true,
	".xhtml": true,
}

// Request is one filing to ingest. Symbol and StatementType, when set,
// override what the filing's general-information block says.
type Request struct {
	Data          []byte
	Source        string
	Symbol        string
	StatementType models.StatementType
}

// Result describes one stored statement.
type Result struct {
	Key        string                  `json:"key"`
	Source     string                  `json:"source"`
	Created    bool                    `json:"created"`
	Period     models.FilingPeriod     `json:"period"`
	Dialect    models.Dialect          `json:"dialect"`
	IsBanking  bool                    `json:"is_banking"`
	Fields     int                     `json:"fields"`
	Validation models.ValidationResult `json:"validation"`
	Warnings   []string                `json:"warnings"`
}

// FileError records a file that could not be ingested.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Summary is the outcome of a directory ingest. One bad file never stops the
// remaining files.
type Summary struct {
	Results  []*Result   `json:"results"`
	Failures []FileError `json:"failures"`
}

// Ingestor turns filings into stored NormalizedStatements.
type Ingestor struct {
	store              interfaces.StatementStorage
	validator          *validation.Validator
	options            xbrl.Options
	fiscalYearEndMonth int
	logger             arbor.ILogger
}

// NewIngestor creates an ingestor writing to store.
func NewIngestor(
	store interfaces.StatementStorage,
	validator *validation.Validator,
	options xbrl.Options,
	fiscalYearEndMonth int,
	logger arbor.ILogger,
) *Ingestor {
	if validator == nil {
		validator = validation.NewValidator(validation.DefaultConfig())
	}
	return &Ingestor{
		store:              store,
		validator:          validator,
		options:            options,
		fiscalYearEndMonth: fiscalYearEndMonth,
		logger:             logger,
	}
}

// Ingest extracts, maps, enriches, validates and upserts one filing.
// Re-ingesting the same filing overwrites the stored record.
func (i *Ingestor) Ingest(ctx context.Context, req Request) (*Result, error) {
	opts := i.options
	opts.Source = req.Source

	doc, err := xbrl.Extract(req.Data, opts)
	if err != nil {
		return nil, err
	}

	mapping := taxonomy.Map(doc)
	period, err := i.buildPeriod(doc, mapping, req)
	if err != nil {
		return nil, &models.ParseError{Source: req.Source, Err: err}
	}

	stmt := &models.NormalizedStatement{
		Period:         period,
		Dialect:        mapping.Dialect,
		IsBanking:      mapping.Banking,
		Currency:       doc.Currency,
		Fields:         mapping.Fields,
		Derived:        mapping.Derived,
		Sources:        mapping.Sources,
		Warnings:       append(append([]string{}, doc.Warnings...), mapping.Warnings...),
		SourceDocument: req.Source,
		UpdatedAt:      time.Now().UTC(),
	}

	// A stored market snapshot outlives re-ingestion of the same period.
	existing, err := i.store.GetStatement(ctx, stmt.Key())
	switch {
	case err == nil:
		stmt.Market = existing.Market
	case !errors.Is(err, models.ErrStatementNotFound):
		return nil, fmt.Errorf("failed to load stored statement %s: %w", stmt.Key(), err)
	}

	metrics.Enrich(stmt)

	prior, err := i.priorPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	result := i.validator.Validate(stmt, prior)

	created, err := i.store.UpsertStatement(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to store statement %s: %w", stmt.Key(), err)
	}

	i.logger.Info().
		Str("key", stmt.Key()).
		Str("source", req.Source).
		Str("dialect", string(stmt.Dialect)).
		Int("fields", len(stmt.Fields)).
		Bool("created", created).
		Bool("valid", result.Valid).
		Msg("Filing ingested")

	return &Result{
		Key:        stmt.Key(),
		Source:     req.Source,
		Created:    created,
		Period:     period,
		Dialect:    stmt.Dialect,
		IsBanking:  stmt.IsBanking,
		Fields:     len(stmt.Fields),
		Validation: result,
		Warnings:   stmt.Warnings,
	}, nil
}

// IngestFile reads and ingests one filing from disk.
func (i *Ingestor) IngestFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filing %s: %w", path, err)
	}
	return i.Ingest(ctx, Request{Data: data, Source: filepath.Base(path)})
}

// IngestDir ingests every filing below dir in lexical path order. The context
// is checked between files.
func (i *Ingestor) IngestDir(ctx context.Context, dir string) (*Summary, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filingExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(paths)

	summary := &Summary{Results: []*Result{}, Failures: []FileError{}}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res, err := i.IngestFile(ctx, path)
		if err != nil {
			i.logger.Warn().Err(err).Str("path", path).Msg("Skipping filing")
			summary.Failures = append(summary.Failures, FileError{Path: path, Error: err.Error()})
			continue
		}
		summary.Results = append(summary.Results, res)
	}

	i.logger.Info().
		Str("dir", dir).
		Int("ingested", len(summary.Results)).
		Int("failed", len(summary.Failures)).
		Msg("Directory ingest complete")
	return summary, nil
}

func (i *Ingestor) buildPeriod(doc *xbrl.Document, mapping *taxonomy.Mapping, req Request) (models.FilingPeriod, error) {
	md := doc.Metadata

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		symbol = md.Symbol
	}
	if symbol == "" {
		symbol = strings.TrimSpace(md.ScripCode)
	}
	if symbol == "" {
		return models.FilingPeriod{}, errors.New("filing does not identify its company")
	}

	end := doc.ReportingPeriodEnd()
	if end.IsZero() {
		end = mapping.PeriodEnd
	}
	if end.IsZero() {
		return models.FilingPeriod{}, errors.New("filing has no reporting period")
	}
	start := doc.ReportingPeriodStart()
	if start.IsZero() {
		start = mapping.PeriodStart
	}

	quarter, ok := models.ParseQuarter(md.Quarter)
	if !ok {
		quarter = models.QuarterFor(end, i.fiscalYearEndMonth)
		if !start.IsZero() && end.Sub(start) >= annualMinDays*24*time.Hour {
			quarter = models.QuarterAnnual
		}
	}

	fiscalYear := models.FiscalYearFor(end, i.fiscalYearEndMonth)
	if !md.FiscalYearEnd.IsZero() {
		fiscalYear = md.FiscalYearEnd.Year()
	}

	statementType := req.StatementType
	if statementType == "" {
		if st, ok := models.ParseStatementType(md.NatureOfReport); ok {
			statementType = st
		} else {
			statementType = models.StatementStandalone
		}
	}

	period := models.FilingPeriod{
		Symbol:        symbol,
		FiscalYear:    fiscalYear,
		Quarter:       quarter,
		StatementType: statementType,
		StartDate:     start,
		EndDate:       end,
		IsAnnual:      quarter == models.QuarterAnnual,
	}
	if err := period.Validate(); err != nil {
		return models.FilingPeriod{}, err
	}
	return period, nil
}

// priorPeriod loads the same slot one fiscal year earlier, if stored.
func (i *Ingestor) priorPeriod(ctx context.Context, p models.FilingPeriod) (*models.NormalizedStatement, error) {
	prior, err := i.store.GetStatement(ctx, models.PeriodKey(p.Symbol, p.FiscalYear-1, p.Quarter, p.StatementType))
	if errors.Is(err, models.ErrStatementNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prior period: %w", err)
	}
	return prior, nil
}
