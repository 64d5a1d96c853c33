package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Dialect identifies the taxonomy version a filing was tagged with.
type Dialect string

const (
	DialectSEBI2025 Dialect = "SEBI_2025"
	DialectBSE2020  Dialect = "BSE_2020"
	DialectUnknown  Dialect = "UNKNOWN"
)

// Quarter is the reporting slot of a filing within its fiscal year.
type Quarter string

const (
	Q1            Quarter = "Q1"
	Q2            Quarter = "Q2"
	Q3            Quarter = "Q3"
	Q4            Quarter = "Q4"
	QuarterAnnual Quarter = "ANNUAL"
)

// Index returns 1-4 for quarterly slots and 0 for annual.
func (q Quarter) Index() int {
	switch q {
	case Q1:
		return 1
	case Q2:
		return 2
	case Q3:
		return 3
	case Q4:
		return 4
	}
	return 0
}

// QuarterFromIndex maps 1-4 to a quarterly slot.
func QuarterFromIndex(i int) Quarter {
	switch i {
	case 1:
		return Q1
	case 2:
		return Q2
	case 3:
		return Q3
	case 4:
		return Q4
	}
	return QuarterAnnual
}

// ParseQuarter accepts the spellings found in exchange filings
// ("Q1", "1", "Quarter 2", "FY", "Annual", "Audited").
func ParseQuarter(s string) (Quarter, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "QUARTER")
	v = strings.TrimSpace(v)
	switch v {
	case "Q1", "1":
		return Q1, true
	case "Q2", "2":
		return Q2, true
	case "Q3", "3":
		return Q3, true
	case "Q4", "4":
		return Q4, true
	case "ANNUAL", "FY", "YEARLY", "AUDITED", "Q5":
		return QuarterAnnual, true
	}
	return "", false
}

// StatementType distinguishes standalone from consolidated results.
type StatementType string

const (
	StatementStandalone   StatementType = "standalone"
	StatementConsolidated StatementType = "consolidated"
)

// ParseStatementType normalizes the "nature of report" values used in filings.
func ParseStatementType(s string) (StatementType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standalone", "stand alone", "stand-alone", "s":
		return StatementStandalone, true
	case "consolidated", "c":
		return StatementConsolidated, true
	}
	return "", false
}

// FilingPeriod identifies one reporting period of one symbol.
// (Symbol, FiscalYear, Quarter, StatementType) is the primary key.
type FilingPeriod struct {
	Symbol        string        `json:"symbol" validate:"required"`
	FiscalYear    int           `json:"fiscal_year" validate:"gte=1990,lte=2100"`
	Quarter       Quarter       `json:"quarter" validate:"required,oneof=Q1 Q2 Q3 Q4 ANNUAL"`
	StatementType StatementType `json:"statement_type" validate:"required,oneof=standalone consolidated"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date" validate:"required"`
	IsAnnual      bool          `json:"is_annual"`
}

// Key returns the storage key for the period's primary key.
func (p FilingPeriod) Key() string {
	return PeriodKey(p.Symbol, p.FiscalYear, p.Quarter, p.StatementType)
}

// PeriodKey formats a primary key as SYMBOL|FY|QUARTER|TYPE.
func PeriodKey(symbol string, fiscalYear int, quarter Quarter, statementType StatementType) string {
	return fmt.Sprintf("%s|%d|%s|%s", strings.ToUpper(strings.TrimSpace(symbol)), fiscalYear, quarter, statementType)
}

var periodValidator = validator.New()

// Validate checks the primary-key fields before a period is persisted.
func (p FilingPeriod) Validate() error {
	if err := periodValidator.Struct(p); err != nil {
		return fmt.Errorf("invalid filing period %s: %w", p.Key(), err)
	}
	if p.IsAnnual != (p.Quarter == QuarterAnnual) {
		return fmt.Errorf("invalid filing period %s: is_annual does not match quarter", p.Key())
	}
	return nil
}

// FiscalYearFor returns the fiscal year label (the calendar year in which the
// fiscal year ends) for a period ending on end.
func FiscalYearFor(end time.Time, fiscalYearEndMonth int) int {
	if fiscalYearEndMonth < 1 || fiscalYearEndMonth > 12 {
		fiscalYearEndMonth = 3
	}
	if int(end.Month()) > fiscalYearEndMonth {
		return end.Year() + 1
	}
	return end.Year()
}

// QuarterFor returns the fiscal quarter containing end.
func QuarterFor(end time.Time, fiscalYearEndMonth int) Quarter {
	if fiscalYearEndMonth < 1 || fiscalYearEndMonth > 12 {
		fiscalYearEndMonth = 3
	}
	startMonth := fiscalYearEndMonth%12 + 1
	offset := (int(end.Month()) - startMonth + 12) % 12
	return QuarterFromIndex(offset/3 + 1)
}
