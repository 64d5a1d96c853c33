package models

import (
	"strings"
	"time"
)

// CompanyType selects the Altman coefficient set.
type CompanyType string

const (
	CompanyManufacturing CompanyType = "manufacturing"
	CompanyService       CompanyType = "service"
	CompanyEmerging      CompanyType = "emerging"
)

// ParseCompanyType accepts the company types case-insensitively.
func ParseCompanyType(s string) (CompanyType, bool) {
	switch t := CompanyType(strings.ToLower(strings.TrimSpace(s))); t {
	case CompanyManufacturing, CompanyService, CompanyEmerging:
		return t, true
	}
	return "", false
}

// GrowthMetrics are multi-year growth rates as fractions (0.10 = 10%).
type GrowthMetrics struct {
	Years          int      `json:"years"`
	RevenueCAGR    *float64 `json:"revenue_cagr,omitempty"`
	ProfitCAGR     *float64 `json:"profit_cagr,omitempty"`
	RevenueYoY     []YoY    `json:"revenue_yoy,omitempty"`
	NetProfitYoY   []YoY    `json:"net_profit_yoy,omitempty"`
	OperatingCFYoY []YoY    `json:"operating_cf_yoy,omitempty"`
}

// YoY is the change of one field between a fiscal year and the one before.
type YoY struct {
	FiscalYear int      `json:"fiscal_year"`
	Change     *float64 `json:"change,omitempty"`
}

// ForensicReport is the structured output of one analysis run.
type ForensicReport struct {
	RunID         string        `json:"run_id"`
	Symbol        string        `json:"symbol"`
	StatementType StatementType `json:"statement_type"`
	CompanyType   CompanyType   `json:"company_type"`
	Listed        bool          `json:"listed"`
	Sector        string        `json:"sector,omitempty"`
	Peers         []string      `json:"peers,omitempty"`
	IsBanking     bool          `json:"is_banking"`
	GeneratedAt   time.Time     `json:"generated_at"`

	RequestedYears int                    `json:"requested_years"`
	Statements     []*NormalizedStatement `json:"statements"`
	Shortfall      *MissingDataError      `json:"shortfall,omitempty"`

	Validations      []StatementValidation `json:"validations"`
	SeriesValidation ValidationResult      `json:"series_validation"`
	Growth           GrowthMetrics         `json:"growth"`

	Beneish   ForensicScoreResult `json:"beneish"`
	Altman    ForensicScoreResult `json:"altman"`
	Piotroski ForensicScoreResult `json:"piotroski"`
	JScore    ForensicScoreResult `json:"jscore"`
	Composite CompositeRiskScore  `json:"composite"`

	Warnings []string `json:"warnings,omitempty"`
}

// Results returns the model results in report order.
func (r *ForensicReport) Results() []ForensicScoreResult {
	return []ForensicScoreResult{r.Beneish, r.Altman, r.Piotroski, r.JScore}
}

// Degraded reports whether the run had less data than requested.
func (r *ForensicReport) Degraded() bool {
	return r.Shortfall != nil || r.Composite.DataCoverage < 1
}
