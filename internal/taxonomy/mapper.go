package taxonomy

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/sector"
	"github.com/ternarybob/scrutor/internal/xbrl"
)

// Mapping is the canonical view of one filing.
type Mapping struct {
	Dialect     models.Dialect
	Fields      models.Fields
	Sources     map[models.Field]string // concept@context, or "derived"
	Derived     []models.Field
	Banking     bool
	PeriodStart time.Time
	PeriodEnd   time.Time
	Warnings    []string
}

func (m *Mapping) set(field models.Field, value float64, source string) {
	m.Fields[field] = value
	m.Sources[field] = source
}

// overlaySubstitutes are the generic fields a bank's own concepts replace
// when the generic concept is absent or zero.
var overlaySubstitutes = []models.Field{models.Revenue, models.NetProfit, models.OperatingExpenses}

// Map resolves every canonical field of a document through the detected
// dialect's alias tables, applies the banking overlay and fills derivable
// fields that were not reported.
func Map(doc *xbrl.Document) *Mapping {
	d := For(doc.Dialect)
	r := newResolver(doc)

	m := &Mapping{
		Dialect:     doc.Dialect,
		Fields:      make(models.Fields),
		Sources:     make(map[models.Field]string),
		PeriodStart: r.periodStart,
		PeriodEnd:   r.periodEnd,
	}

	banking := make(map[models.Field]resolved)
	for _, spec := range models.AllFields() {
		if !spec.Banking {
			continue
		}
		if v, ok := r.resolve(spec, d.BankingAliases(spec.Field)); ok {
			banking[spec.Field] = v
		}
	}
	m.Banking = sector.IsBanking(sector.Indicators{
		InterestIncome:    banking[models.InterestIncome].value != 0,
		InterestExpense:   banking[models.InterestExpense].value != 0,
		NetInterestIncome: banking[models.NetInterestIncome].value != 0,
		Advances:          banking[models.Advances].value != 0,
		Deposits:          banking[models.Deposits].value != 0,
	})

	for _, spec := range models.AllFields() {
		if spec.Banking {
			continue
		}
		if v, ok := r.resolve(spec, d.Aliases(spec.Field)); ok {
			m.set(spec.Field, v.value, v.source)
		}
	}

	if m.Banking {
		for _, spec := range models.AllFields() {
			if v, ok := banking[spec.Field]; ok && spec.Banking {
				m.set(spec.Field, v.value, v.source)
			}
		}
		for _, field := range overlaySubstitutes {
			if m.Fields.NonZero(field) {
				continue
			}
			spec, _ := models.SpecFor(field)
			if v, ok := r.resolve(spec, d.BankingAliases(field)); ok && v.value != 0 {
				m.set(field, v.value, v.source)
			}
		}
	}

	derive(m)
	m.Warnings = append(m.Warnings, r.warnings...)
	return m
}

type resolved struct {
	value  float64
	source string
}

type resolver struct {
	doc         *xbrl.Document
	byName      map[string][]xbrl.Fact
	periodStart time.Time
	periodEnd   time.Time
	warnings    []string
}

func newResolver(doc *xbrl.Document) *resolver {
	r := &resolver{
		doc:         doc,
		byName:      make(map[string][]xbrl.Fact),
		periodStart: doc.ReportingPeriodStart(),
		periodEnd:   doc.ReportingPeriodEnd(),
	}
	for _, f := range doc.NumericFacts() {
		ctx, ok := doc.Contexts[f.ContextID]
		if !ok || ctx.Dimensional {
			continue
		}
		key := strings.ToLower(f.Name)
		r.byName[key] = append(r.byName[key], f)
	}
	return r
}

// resolve returns the first alias with a usable value in an acceptable
// context. Instant fields only ever read instant contexts and flow fields
// only ever read duration contexts.
func (r *resolver) resolve(spec models.FieldSpec, aliases []string) (resolved, bool) {
	for _, alias := range aliases {
		facts := r.byName[strings.ToLower(alias)]
		if len(facts) == 0 {
			continue
		}

		var best *xbrl.Fact
		var bestCtx xbrl.Context
		wrongAxis := false
		for i := range facts {
			f := &facts[i]
			ctx := r.doc.Contexts[f.ContextID]
			if !r.acceptable(spec.Period, ctx) {
				wrongAxis = true
				continue
			}
			if best == nil || r.better(ctx, bestCtx) {
				best, bestCtx = f, ctx
			}
		}
		if best == nil {
			if wrongAxis {
				r.warnings = append(r.warnings, fmt.Sprintf("%s: %s has no %s context, ignored", spec.Field, alias, axisName(spec.Period)))
			}
			continue
		}

		if r.doc.IsAmbiguous(best.Concept, best.ContextID) {
			r.warnings = append(r.warnings, fmt.Sprintf("%s: conflicting values for %s in %s, using first reported", spec.Field, best.Concept, best.ContextID))
		}
		return resolved{value: best.Float(), source: best.Concept + "@" + best.ContextID}, true
	}
	return resolved{}, false
}

func axisName(p models.PeriodType) string {
	if p == models.PeriodInstant {
		return "instant"
	}
	return "reporting-period duration"
}

func (r *resolver) acceptable(period models.PeriodType, ctx xbrl.Context) bool {
	switch period {
	case models.PeriodInstant:
		return ctx.IsInstant()
	case models.PeriodDuration:
		if !ctx.IsDuration() {
			return false
		}
		return r.periodEnd.IsZero() || ctx.End.Equal(r.periodEnd)
	}
	return ctx.IsInstant() || ctx.IsDuration()
}

// better orders candidate contexts: latest date first; for durations ending
// on the same day, the reporting-period start, then the shortest span.
func (r *resolver) better(a, b xbrl.Context) bool {
	if a.IsInstant() != b.IsInstant() {
		return a.IsInstant()
	}
	if !a.Date().Equal(b.Date()) {
		return a.Date().After(b.Date())
	}
	if a.IsDuration() {
		aMatch := !r.periodStart.IsZero() && a.Start.Equal(r.periodStart)
		bMatch := !r.periodStart.IsZero() && b.Start.Equal(r.periodStart)
		if aMatch != bMatch {
			return aMatch
		}
		return a.Start.After(b.Start)
	}
	return false
}
