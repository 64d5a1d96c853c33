// Package xbrl extracts facts, contexts and units from XBRL and inline XBRL
// financial-statement filings.
package xbrl

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/scrutor/internal/models"
)

const (
	nsInstance = "http://www.xbrl.org/2003/instance"
	nsXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	dateLayout = "2006-01-02"
)

// ContextKind is the period axis of a context.
type ContextKind int

const (
	ContextInstant ContextKind = iota
	ContextDuration
	ContextForever
)

func (k ContextKind) String() string {
	switch k {
	case ContextInstant:
		return "instant"
	case ContextDuration:
		return "duration"
	}
	return "forever"
}

// Context is a reporting-period context.
type Context struct {
	ID          string
	Kind        ContextKind
	Instant     time.Time
	Start       time.Time
	End         time.Time
	Entity      string
	Dimensional bool // carries segment or scenario members
}

// IsInstant reports whether the context is a point in time.
func (c Context) IsInstant() bool { return c.Kind == ContextInstant }

// IsDuration reports whether the context spans a start/end interval.
func (c Context) IsDuration() bool { return c.Kind == ContextDuration }

// Date returns the instant date or the end of a duration.
func (c Context) Date() time.Time {
	if c.Kind == ContextInstant {
		return c.Instant
	}
	return c.End
}

// Unit is a measurement unit declaration.
type Unit struct {
	ID          string
	Measure     string // e.g. iso4217:INR, xbrli:shares
	Denominator string // set for divide units, e.g. xbrli:shares for INR/share
}

// Currency returns the ISO currency code of the unit's numerator, if any.
func (u Unit) Currency() string {
	prefix, local, ok := strings.Cut(u.Measure, ":")
	if !ok {
		return ""
	}
	if strings.EqualFold(prefix, "iso4217") {
		return strings.ToUpper(local)
	}
	return ""
}

// String renders the unit as measure or measure/denominator.
func (u Unit) String() string {
	if u.Denominator == "" {
		return u.Measure
	}
	return u.Measure + "/" + u.Denominator
}

// Fact is one tagged value. Facts are immutable once extracted.
type Fact struct {
	Concept   string // prefix:local as declared in the document
	Namespace string
	Name      string // local name
	ContextID string
	UnitID    string
	Value     decimal.Decimal
	Text      string
	Numeric   bool
	Nil       bool
	Decimals  *int
	Converted bool
}

// Float returns the value as float64.
func (f Fact) Float() float64 {
	v, _ := f.Value.Float64()
	return v
}

// DuplicateFact records a concept reported more than once in the same
// context with materially different values.
type DuplicateFact struct {
	Concept   string
	ContextID string
	Values    []decimal.Decimal
}

// Metadata is the general information block of a filing.
type Metadata struct {
	Symbol          string
	ScripCode       string
	CompanyName     string
	Quarter         string
	NatureOfReport  string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	FiscalYearStart time.Time
	FiscalYearEnd   time.Time
	Currency        string
}

// Document is the result of one extraction pass.
type Document struct {
	Facts            []Fact
	Contexts         map[string]Context
	Units            map[string]Unit
	Namespaces       map[string]string // prefix -> URI
	Dialect          models.Dialect
	DialectKnown     bool
	Metadata         Metadata
	Currency         string // currency of the values after conversion
	ReportedCurrency string
	ConversionRate   *decimal.Decimal
	Duplicates       []DuplicateFact
	Warnings         []string
	Inline           bool
}

// NumericFacts returns the facts carrying a usable numeric value.
func (d *Document) NumericFacts() []Fact {
	out := make([]Fact, 0, len(d.Facts))
	for _, f := range d.Facts {
		if f.Numeric && !f.Nil {
			out = append(out, f)
		}
	}
	return out
}

// IsAmbiguous reports whether a concept/context pair was flagged as a
// conflicting duplicate.
func (d *Document) IsAmbiguous(concept, contextID string) bool {
	for _, dup := range d.Duplicates {
		if dup.Concept == concept && dup.ContextID == contextID {
			return true
		}
	}
	return false
}

// ReportingPeriodEnd returns the tagged period end, else the latest
// duration end date found in the document.
func (d *Document) ReportingPeriodEnd() time.Time {
	if !d.Metadata.PeriodEnd.IsZero() {
		return d.Metadata.PeriodEnd
	}
	var latest time.Time
	for _, c := range d.Contexts {
		if c.IsDuration() && !c.Dimensional && c.End.After(latest) {
			latest = c.End
		}
	}
	return latest
}

// ReportingPeriodStart returns the tagged period start, else the start of the
// shortest non-dimensional duration ending on the reporting period end.
func (d *Document) ReportingPeriodStart() time.Time {
	if !d.Metadata.PeriodStart.IsZero() {
		return d.Metadata.PeriodStart
	}
	end := d.ReportingPeriodEnd()
	var start time.Time
	for _, c := range d.Contexts {
		if c.IsDuration() && !c.Dimensional && c.End.Equal(end) && c.Start.After(start) {
			start = c.Start
		}
	}
	return start
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// Instants written as datetime keep only the date part.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err == nil {
		return t, true
	}
	if t, err := time.Parse("02-01-2006", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
