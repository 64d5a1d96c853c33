// Package analysis runs the per-symbol forensic pipeline over stored
// statements: aggregate, enrich, validate, score, report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/sector"
	"github.com/ternarybob/scrutor/internal/services/aggregation"
	"github.com/ternarybob/scrutor/internal/services/forensic"
	"github.com/ternarybob/scrutor/internal/services/metrics"
	"github.com/ternarybob/scrutor/internal/services/validation"
)

// Request selects what to analyze. Zero values fall back to the analyzer's
// defaults; an empty StatementType means auto-detect.
type Request struct {
	Symbol        string               `json:"symbol"`
	Years         int                  `json:"years,omitempty"`
	StatementType models.StatementType `json:"statement_type,omitempty"`
	CompanyType   models.CompanyType   `json:"company_type,omitempty"`
	Listed        *bool                `json:"listed,omitempty"`
}

// Defaults are applied to every request field left empty.
type Defaults struct {
	Years         int
	StatementType models.StatementType
	CompanyType   models.CompanyType
	Listed        bool
}

// Analyzer produces ForensicReports. It is safe for concurrent use.
type Analyzer struct {
	statements interfaces.StatementStorage
	reports    interfaces.ReportStorage
	market     interfaces.MarketDataProvider
	validator  *validation.Validator
	config     forensic.Config
	sectors    *common.SectorTable
	defaults   Defaults
	logger     arbor.ILogger
}

// NewAnalyzer wires an analyzer. market and sectors may be nil.
func NewAnalyzer(
	statements interfaces.StatementStorage,
	reports interfaces.ReportStorage,
	market interfaces.MarketDataProvider,
	validator *validation.Validator,
	config forensic.Config,
	sectors *common.SectorTable,
	defaults Defaults,
	logger arbor.ILogger,
) *Analyzer {
	if defaults.Years <= 0 {
		defaults.Years = 5
	}
	if defaults.CompanyType == "" {
		defaults.CompanyType = models.CompanyManufacturing
	}
	if validator == nil {
		validator = validation.NewValidator(validation.DefaultConfig())
	}
	return &Analyzer{
		statements: statements,
		reports:    reports,
		market:     market,
		validator:  validator,
		config:     config,
		sectors:    sectors,
		defaults:   defaults,
		logger:     logger,
	}
}

// Analyze runs the full pipeline for one symbol and caches the report.
// Missing data degrades the report; only storage failures and an unknown
// symbol are errors.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (report *models.ForensicReport, err error) {
	defer common.Recover(a.logger, "analyze "+req.Symbol, &err)

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	years := req.Years
	if years <= 0 {
		years = a.defaults.Years
	}

	statementType, err := a.resolveStatementType(ctx, symbol, req.StatementType)
	if err != nil {
		return nil, err
	}

	stored, err := a.statements.ListStatements(ctx, interfaces.StatementFilter{Symbol: symbol, StatementType: statementType})
	if err != nil {
		return nil, fmt.Errorf("failed to load statements for %s: %w", symbol, err)
	}

	agg := aggregation.Aggregate(symbol, stored, years)
	warnings := append([]string{}, agg.Warnings...)

	if w := a.enrichMarket(ctx, symbol, agg.Statements); w != "" {
		warnings = append(warnings, w)
	}

	companyType, listed := a.resolveCompany(req)
	report = &models.ForensicReport{
		RunID:          common.NewRunID(),
		Symbol:         symbol,
		StatementType:  statementType,
		CompanyType:    companyType,
		Listed:         listed,
		GeneratedAt:    time.Now().UTC(),
		RequestedYears: years,
		Statements:     agg.Statements,
		Shortfall:      agg.Shortfall,
		IsBanking:      sector.AnyBanking(agg.Statements),
	}
	if s, ok := a.sectors.Lookup(symbol); ok {
		report.Sector = s.Name
		report.Peers = a.sectors.Peers(symbol)
		report.IsBanking = report.IsBanking || s.Banking
	}
	if report.Statements == nil {
		report.Statements = []*models.NormalizedStatement{}
	}

	report.Validations = a.validate(agg.Statements)
	report.SeriesValidation = a.validator.ValidateSeries(agg.Statements)
	report.Growth = metrics.Growth(agg.Statements, years)

	scores := forensic.Calculate(agg.Statements, forensic.AltmanOptions{CompanyType: companyType, Listed: listed}, a.config)
	report.Beneish = scores.Beneish
	report.Altman = scores.Altman
	report.Piotroski = scores.Piotroski
	report.JScore = scores.JScore
	report.Composite = scores.Composite

	for _, v := range report.Validations {
		if !v.Result.Valid {
			warnings = append(warnings, (&models.ValidationFailure{Key: v.Key, Errors: v.Result.Errors}).Error())
		}
	}
	report.Warnings = warnings

	if err := a.reports.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to cache report for %s: %w", symbol, err)
	}

	event := a.logger.Info().
		Str("symbol", symbol).
		Str("run_id", report.RunID).
		Str("statement_type", string(statementType)).
		Int("years", len(agg.Statements)).
		Str("recommendation", string(report.Composite.Recommendation))
	if report.Composite.Score != nil {
		event = event.Float64("score", *report.Composite.Score)
	}
	event.Msg("Analysis complete")

	return report, nil
}

// Report returns the cached report, auto-detecting the statement type when
// none is given.
func (a *Analyzer) Report(ctx context.Context, symbol string, statementType models.StatementType) (*models.ForensicReport, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	st, err := a.resolveStatementType(ctx, symbol, statementType)
	if err != nil {
		return nil, err
	}
	return a.reports.GetReport(ctx, symbol, st)
}

// DetectStatementType picks the statement type with more stored periods.
// Ties go to consolidated.
func DetectStatementType(counts map[models.StatementType]int) (models.StatementType, bool) {
	standalone := counts[models.StatementStandalone]
	consolidated := counts[models.StatementConsolidated]
	if standalone == 0 && consolidated == 0 {
		return "", false
	}
	if standalone > consolidated {
		return models.StatementStandalone, true
	}
	return models.StatementConsolidated, true
}

func (a *Analyzer) resolveStatementType(ctx context.Context, symbol string, requested models.StatementType) (models.StatementType, error) {
	if requested == "" {
		requested = a.defaults.StatementType
	}
	if requested != "" {
		return requested, nil
	}
	counts, err := a.statements.CountByType(ctx, symbol)
	if err != nil {
		return "", fmt.Errorf("failed to count statements for %s: %w", symbol, err)
	}
	st, ok := DetectStatementType(counts)
	if !ok {
		return "", fmt.Errorf("no statements stored for %s: %w", symbol, models.ErrStatementNotFound)
	}
	return st, nil
}

// resolveCompany applies request, then sector table, then defaults.
func (a *Analyzer) resolveCompany(req Request) (models.CompanyType, bool) {
	companyType := req.CompanyType
	if companyType == "" {
		if s, ok := a.sectors.Lookup(req.Symbol); ok && s.CompanyType != "" {
			companyType = models.CompanyType(s.CompanyType)
		}
	}
	if companyType == "" {
		companyType = a.defaults.CompanyType
	}
	listed := a.defaults.Listed
	if req.Listed != nil {
		listed = *req.Listed
	}
	return companyType, listed
}

// enrichMarket attaches a market snapshot to the latest statement and
// persists it when that statement is a stored annual filing. It returns a
// warning when no snapshot could be attached.
func (a *Analyzer) enrichMarket(ctx context.Context, symbol string, stmts []*models.NormalizedStatement) string {
	if len(stmts) == 0 {
		return ""
	}
	if a.market == nil {
		return "no market data provider configured"
	}

	snap, err := a.market.Snapshot(ctx, symbol)
	if err != nil {
		a.logger.Warn().Err(err).Str("symbol", symbol).Str("provider", a.market.Name()).Msg("Market data unavailable")
		return fmt.Sprintf("market data unavailable: %v", err)
	}

	latest := stmts[0]
	latest.Market = snap
	metrics.Enrich(latest)
	if latest.Synthesized {
		return ""
	}
	if err := a.statements.PatchMarket(ctx, latest.Key(), snap, latest.Calculated); err != nil {
		a.logger.Warn().Err(err).Str("key", latest.Key()).Msg("Failed to persist market snapshot")
	}
	return ""
}

// validate checks each statement against the fiscal year before it.
func (a *Analyzer) validate(stmts []*models.NormalizedStatement) []models.StatementValidation {
	out := make([]models.StatementValidation, 0, len(stmts))
	for i, s := range stmts {
		var prior *models.NormalizedStatement
		if i+1 < len(stmts) && stmts[i+1].Period.FiscalYear == s.Period.FiscalYear-1 {
			prior = stmts[i+1]
		}
		out = append(out, models.StatementValidation{
			Key:        s.Key(),
			FiscalYear: s.Period.FiscalYear,
			Result:     a.validator.Validate(s, prior),
		})
	}
	return out
}
