package xbrl

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// checkDuplicates records concepts tagged more than once in the same
// context with values further apart than the tolerance. All facts are kept.
func checkDuplicates(doc *Document, relTolerance float64) {
	type key struct{ concept, context string }

	groups := make(map[key][]Fact)
	var order []key
	for _, f := range doc.Facts {
		if !f.Numeric || f.Nil {
			continue
		}
		k := key{f.Concept, f.ContextID}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], f)
	}

	rel := decimal.NewFromFloat(relTolerance)
	for _, k := range order {
		facts := groups[k]
		if len(facts) < 2 {
			continue
		}

		maxAbs := decimal.Zero
		grain := decimal.Zero
		for _, f := range facts {
			if a := f.Value.Abs(); a.GreaterThan(maxAbs) {
				maxAbs = a
			}
			if g := granularity(f.Decimals); g.GreaterThan(grain) {
				grain = g
			}
		}
		tol := decimal.Max(maxAbs.Mul(rel), grain)

		conflict := false
		values := make([]decimal.Decimal, 0, len(facts))
		for _, f := range facts {
			values = append(values, f.Value)
			if f.Value.Sub(facts[0].Value).Abs().GreaterThan(tol) {
				conflict = true
			}
		}
		if !conflict {
			continue
		}

		doc.Duplicates = append(doc.Duplicates, DuplicateFact{Concept: k.concept, ContextID: k.context, Values: values})
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("conflicting values for %s in %s: %v", k.concept, k.context, values))
	}
}
