package taxonomy

import "github.com/ternarybob/scrutor/internal/models"

const derivedSource = "derived"

type derivation struct {
	field   models.Field
	banking bool
	compute func(f models.Fields) (float64, bool)
}

func sum(fields ...models.Field) func(models.Fields) (float64, bool) {
	return func(f models.Fields) (float64, bool) {
		total := 0.0
		for _, field := range fields {
			v, ok := f.Get(field)
			if !ok {
				return 0, false
			}
			total += v
		}
		return total, true
	}
}

// Derivations run in order; later rules may use fields produced by earlier ones.
var derivations = []derivation{
	{field: models.Revenue, banking: true, compute: func(f models.Fields) (float64, bool) {
		v, ok := f.Get(models.InterestIncome)
		return v, ok && v != 0
	}},
	{field: models.Equity, compute: sum(models.ShareCapital, models.Reserves)},
	{field: models.TotalDebt, compute: func(f models.Fields) (float64, bool) {
		cur, okCur := f.Get(models.CurrentBorrowings)
		non, okNon := f.Get(models.NonCurrentBorrowings)
		if !okCur && !okNon {
			return 0, false
		}
		return cur + non, true
	}},
	{field: models.Liabilities, compute: sum(models.CurrentLiabilities, models.NonCurrentLiabilities)},
	{field: models.NetInterestIncome, banking: true, compute: func(f models.Fields) (float64, bool) {
		in, ok1 := f.Get(models.InterestIncome)
		out, ok2 := f.Get(models.InterestExpense)
		return in - out, ok1 && ok2
	}},
	{field: models.OperatingExpenses, compute: func(f models.Fields) (float64, bool) {
		total, ok1 := f.Get(models.TotalExpenses)
		dep, ok2 := f.Get(models.Depreciation)
		fin, ok3 := f.Get(models.FinanceCosts)
		return total - dep - fin, ok1 && ok2 && ok3
	}},
	{field: models.OperatingProfit, compute: func(f models.Fields) (float64, bool) {
		rev, ok1 := f.Get(models.Revenue)
		opex, ok2 := f.Get(models.OperatingExpenses)
		return rev - opex, ok1 && ok2
	}},
	{field: models.EBITDA, compute: sum(models.ProfitBeforeTax, models.FinanceCosts, models.Depreciation)},
	{field: models.NumberOfShares, compute: func(f models.Fields) (float64, bool) {
		capital, ok1 := f.Get(models.ShareCapital)
		face, ok2 := f.Get(models.FaceValue)
		if !ok1 || !ok2 || face <= 0 {
			return 0, false
		}
		return capital / face, true
	}},
}

// derive fills missing fields from the ones present. Reported values are
// never overridden.
func derive(m *Mapping) {
	for _, d := range derivations {
		if d.banking && !m.Banking {
			continue
		}
		if m.Fields.Has(d.field) {
			continue
		}
		v, ok := d.compute(m.Fields)
		if !ok {
			continue
		}
		m.set(d.field, v, derivedSource)
		m.Derived = append(m.Derived, d.field)
	}
}

// Derive applies the derivation rules to a bare field set, returning the
// fields it added. Used for statements built outside a filing.
func Derive(fields models.Fields, banking bool) []models.Field {
	m := &Mapping{Fields: fields, Sources: make(map[models.Field]string), Banking: banking}
	derive(m)
	return m.Derived
}
