package xbrl

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DatedRate is a conversion rate effective from Date.
type DatedRate struct {
	Date time.Time
	Rate decimal.Decimal
}

// RateTable converts foreign currency units into the domestic currency.
// Rates are "domestic units per one foreign unit".
type RateTable struct {
	defaults map[string]decimal.Decimal
	dated    map[string][]DatedRate
}

// NewRateTable builds a table from default per-currency rates.
func NewRateTable(defaults map[string]float64) *RateTable {
	t := &RateTable{
		defaults: make(map[string]decimal.Decimal, len(defaults)),
		dated:    make(map[string][]DatedRate),
	}
	for code, rate := range defaults {
		t.defaults[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}
	return t
}

// DefaultRateTable carries approximate INR rates for the common reporting
// currencies of Indian-listed subsidiaries.
func DefaultRateTable() *RateTable {
	return NewRateTable(map[string]float64{
		"USD": 83.0,
		"EUR": 90.0,
		"GBP": 105.0,
	})
}

// AddDated registers a point-in-time rate.
func (t *RateTable) AddDated(currency string, date time.Time, rate float64) {
	code := strings.ToUpper(currency)
	rates := append(t.dated[code], DatedRate{Date: date, Rate: decimal.NewFromFloat(rate)})
	sort.Slice(rates, func(i, j int) bool { return rates[i].Date.Before(rates[j].Date) })
	t.dated[code] = rates
}

// Rate returns the latest dated rate on or before at, falling back to the
// currency's default rate.
func (t *RateTable) Rate(currency string, at time.Time) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}
	code := strings.ToUpper(currency)
	if !at.IsZero() {
		rates := t.dated[code]
		for i := len(rates) - 1; i >= 0; i-- {
			if !rates[i].Date.After(at) {
				return rates[i].Rate, true
			}
		}
	}
	r, ok := t.defaults[code]
	return r, ok
}

// normalizeCurrency detects the reporting currency and converts every fact
// carrying that currency's unit into the domestic currency.
func normalizeCurrency(doc *Document, opts Options) {
	domestic := strings.ToUpper(opts.DomesticCurrency)
	if domestic == "" {
		domestic = "INR"
	}

	reported := doc.Metadata.Currency
	if reported == "" {
		reported = dominantCurrency(doc)
	}
	if reported == "" {
		reported = domestic
	}
	doc.ReportedCurrency = reported
	doc.Currency = reported

	if reported == domestic {
		return
	}

	rate, ok := opts.Rates.Rate(reported, doc.ReportingPeriodEnd())
	if !ok {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("no %s/%s conversion rate, values left in %s", reported, domestic, reported))
		return
	}

	for i := range doc.Facts {
		f := &doc.Facts[i]
		if !f.Numeric || f.Nil {
			continue
		}
		if doc.Units[f.UnitID].Currency() != reported {
			continue
		}
		f.Value = f.Value.Mul(rate)
		f.Converted = true
	}
	doc.Currency = domestic
	doc.ConversionRate = &rate
	doc.Warnings = append(doc.Warnings, fmt.Sprintf("converted %s facts to %s at %s", reported, domestic, rate.String()))
}

// dominantCurrency is the ISO currency carried by the most numeric facts.
func dominantCurrency(doc *Document) string {
	counts := make(map[string]int)
	for _, f := range doc.Facts {
		if !f.Numeric {
			continue
		}
		if c := doc.Units[f.UnitID].Currency(); c != "" {
			counts[c]++
		}
	}
	best, bestCount := "", 0
	for c, n := range counts {
		if n > bestCount || (n == bestCount && c < best) {
			best, bestCount = c, n
		}
	}
	return best
}
