// Package validation applies reconciliation, completeness and
// reasonableness rules to normalized statements.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/sector"
	"github.com/ternarybob/scrutor/internal/services/metrics"
)

// Config holds the tolerances used by the validator.
type Config struct {
	RelativeTolerance    float64 // accounting equation and P&L, fraction of the base value
	AbsoluteTolerance    float64 // floor for the above, raw currency units
	FallbackPnLTolerance float64 // revenue-minus-expenses reconciliation
	MinCompleteness      float64 // minimum completeness for a valid statement
}

// DefaultConfig returns 0.1% / ₹10 lakh tolerances, a 15% fallback P&L
// tolerance and a 60% completeness floor.
func DefaultConfig() Config {
	return Config{
		RelativeTolerance:    0.001,
		AbsoluteTolerance:    1_000_000,
		FallbackPnLTolerance: 0.15,
		MinCompleteness:      60,
	}
}

var (
	criticalFields = []models.Field{
		models.Revenue, models.NetProfit, models.Assets,
		models.Equity, models.Liabilities, models.OperatingCashFlow,
	}
	importantFields = []models.Field{
		models.CurrentAssets, models.CurrentLiabilities, models.TotalDebt,
		models.EBITDA, models.EPSBasic, models.Cash,
	}
	// Banks do not classify current assets and liabilities.
	bankImportantFields = []models.Field{
		models.Advances, models.Deposits, models.NetInterestIncome,
		models.Provisions, models.EPSBasic, models.Cash,
	}
)

const (
	criticalWeight  = 70.0
	importantWeight = 30.0
)

// Validator checks statements. It holds no state beyond its configuration.
type Validator struct {
	cfg Config
}

// NewValidator creates a validator.
func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

type checks struct {
	passed   int
	errors   []string
	warnings []string
	notes    []string // reported with the warnings, no quality penalty
}

func (c *checks) pass() { c.passed++ }

func (c *checks) fail(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *checks) warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *checks) note(format string, args ...any) {
	c.notes = append(c.notes, fmt.Sprintf(format, args...))
}

func (c *checks) result(completeness, minCompleteness float64) models.ValidationResult {
	quality := completeness - 20*float64(len(c.errors)) - 5*float64(len(c.warnings)) + math.Min(2*float64(c.passed), 20)
	return models.ValidationResult{
		Valid:        len(c.errors) == 0 && completeness >= minCompleteness,
		QualityScore: clamp(quality, 0, 100),
		Completeness: completeness,
		PassedChecks: c.passed,
		Errors:       nonNil(c.errors),
		Warnings:     nonNil(append(c.warnings, c.notes...)),
	}
}

// Validate checks one statement. prior, when given, adds the year-over-year
// swing checks against the previous period.
func (v *Validator) Validate(s *models.NormalizedStatement, prior *models.NormalizedStatement) models.ValidationResult {
	c := &checks{}
	if s == nil {
		c.fail("no statement")
		return c.result(0, v.cfg.MinCompleteness)
	}

	f := s.Fields
	banking := s.IsBanking || sector.StatementIsBanking(s)

	v.accountingEquation(c, f)
	v.signs(c, f, s.Market)
	v.profitReconciliation(c, f)
	cashFlowAvailability(c, f)
	reasonableness(c, metrics.Calculate(f, s.Market), banking)
	if prior != nil {
		swings(c, s, prior)
	}

	// Completeness already weighs the critical fields.
	completeness := Completeness(f, banking)
	if missing := missingCritical(f); len(missing) > 0 {
		c.note("missing critical fields: %s", strings.Join(missing, ", "))
	}
	return c.result(completeness, v.cfg.MinCompleteness)
}

// Tolerance is the accounting-equation tolerance for a given asset base.
func (v *Validator) Tolerance(assets float64) float64 {
	return math.Max(v.cfg.RelativeTolerance*math.Abs(assets), v.cfg.AbsoluteTolerance)
}

func (v *Validator) accountingEquation(c *checks, f models.Fields) {
	assets, okA := f.Get(models.Assets)
	equity, okE := f.Get(models.Equity)
	if !okA || !okE {
		c.warn("accounting equation not evaluated: assets or equity missing")
		return
	}
	liabilities, ok := f.Get(models.Liabilities)
	if !ok {
		c.warn("accounting equation not evaluated: liabilities missing")
		return
	}
	diff := math.Abs(assets - (liabilities + equity))
	if diff > v.Tolerance(assets) {
		c.fail("accounting equation broken: assets %.0f vs liabilities+equity %.0f (diff %.0f)", assets, liabilities+equity, diff)
		return
	}
	c.pass()
}

var (
	mustBeNonNegative = []models.Field{models.Revenue, models.Assets, models.CurrentAssets, models.Equity}
	mayBeNegative     = []models.Field{models.NetProfit, models.OperatingProfit, models.EBITDA, models.OperatingCashFlow}
)

func (v *Validator) signs(c *checks, f models.Fields, market *models.MarketSnapshot) {
	ok := true
	for _, field := range mustBeNonNegative {
		if val, present := f.Get(field); present && val < 0 {
			c.fail("%s is negative (%.0f)", field, val)
			ok = false
		}
	}
	if market != nil && market.MarketCap < 0 {
		c.fail("market cap is negative (%.0f)", market.MarketCap)
		ok = false
	}
	if ok {
		c.pass()
	}
	for _, field := range mayBeNegative {
		if val, present := f.Get(field); present && val < 0 {
			c.warn("%s is negative (%.0f)", field, val)
		}
	}
}

func (v *Validator) profitReconciliation(c *checks, f models.Fields) {
	np, ok := f.Get(models.NetProfit)
	if !ok {
		return
	}

	pbt, okP := f.Get(models.ProfitBeforeTax)
	tax, okT := f.Get(models.TaxExpense)
	if okP && okT {
		tol := math.Max(v.cfg.RelativeTolerance*math.Abs(np), v.cfg.AbsoluteTolerance)
		if math.Abs(pbt-tax-np) <= tol {
			c.pass()
			return
		}
	}

	revenue, okR := f.Get(models.Revenue)
	opex, okO := f.Get(models.OperatingExpenses)
	if !okR || !okO {
		if okP && okT {
			c.warn("profit before tax less tax (%.0f) does not reconcile to net profit (%.0f)", pbt-tax, np)
		}
		return
	}
	implied := revenue + f[models.OtherIncome] - opex - f[models.Depreciation] - f[models.FinanceCosts] - f[models.TaxExpense]
	base := math.Max(math.Abs(np), v.cfg.AbsoluteTolerance)
	if math.Abs(implied-np)/base <= v.cfg.FallbackPnLTolerance {
		c.pass()
		return
	}
	c.warn("income statement implies net profit %.0f, reported %.0f", implied, np)
}

func cashFlowAvailability(c *checks, f models.Fields) {
	for _, spec := range models.AllFields() {
		if spec.CashFlow && f.Has(spec.Field) {
			c.pass()
			return
		}
	}
	c.warn("no cash-flow data")
}

type band struct {
	name     string
	value    *float64
	min, max float64
	bankSkip bool
}

func reasonableness(c *checks, calc models.CalculatedFields, banking bool) {
	if m := calc.NetMargin; m != nil {
		switch {
		case *m > 1:
			c.fail("net margin %.1f%% exceeds 100%%", *m*100)
		case *m < -1:
			c.warn("net margin %.1f%% below -100%%", *m*100)
		default:
			c.pass()
		}
	}

	bands := []band{
		{name: "asset turnover", value: calc.AssetTurnover, min: 0.05, max: 10, bankSkip: true},
		{name: "current ratio", value: calc.CurrentRatio, min: 0.5, max: 10, bankSkip: true},
		{name: "debt to equity", value: calc.DebtToEquity, min: 0, max: 5, bankSkip: true},
	}
	for _, b := range bands {
		if b.value == nil || (banking && b.bankSkip) {
			continue
		}
		if *b.value < b.min || *b.value > b.max {
			c.warn("%s %.2fx outside [%.2f, %.2f]", b.name, *b.value, b.min, b.max)
			continue
		}
		c.pass()
	}
}

// Completeness weighs six critical fields at 70% and six important fields
// at 30%.
func Completeness(f models.Fields, banking bool) float64 {
	important := importantFields
	if banking {
		important = bankImportantFields
	}
	return criticalWeight*presentShare(f, criticalFields) + importantWeight*presentShare(f, important)
}

func presentShare(f models.Fields, fields []models.Field) float64 {
	n := 0
	for _, field := range fields {
		if f.Has(field) {
			n++
		}
	}
	return float64(n) / float64(len(fields))
}

func missingCritical(f models.Fields) []string {
	var out []string
	for _, field := range criticalFields {
		if !f.Has(field) {
			out = append(out, string(field))
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
