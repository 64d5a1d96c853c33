package forensic

import (
	"math"
	"strings"

	"github.com/ternarybob/scrutor/internal/models"
)

// div returns a/b, false when b is zero.
func div(a, b float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	return a / b, true
}

// growth returns (curr-prev)/|prev|, false when prev is zero.
func growth(curr, prev float64) (float64, bool) {
	if prev == 0 {
		return 0, false
	}
	return (curr - prev) / math.Abs(prev), true
}

// costOfSales sums the cost-of-goods components that are present.
func costOfSales(f models.Fields) (float64, bool) {
	total, any := 0.0, false
	for _, field := range []models.Field{models.CostOfMaterials, models.PurchasesOfStockInTrade, models.ChangesInInventories} {
		if v, ok := f.Get(field); ok {
			total += v
			any = true
		}
	}
	return total, any
}

// sellingGeneralAdmin approximates SG&A as employee benefits plus other
// expenses, the closest line items in the Indian schedule.
func sellingGeneralAdmin(f models.Fields) (float64, bool) {
	total, any := 0.0, false
	for _, field := range []models.Field{models.EmployeeBenefits, models.OtherExpenses} {
		if v, ok := f.Get(field); ok {
			total += v
			any = true
		}
	}
	return total, any
}

// missing lists the fields absent from f.
func missing(f models.Fields, fields ...models.Field) []string {
	var out []string
	for _, field := range fields {
		if !f.Has(field) {
			out = append(out, string(field))
		}
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

// riskForPoints maps a flag's points to its severity.
func riskForPoints(points int) models.RiskLevel {
	switch {
	case points >= 3:
		return models.RiskHigh
	case points == 2:
		return models.RiskMedium
	}
	return models.RiskLow
}

func joinPrefixed(prefix string, items []string) string {
	return prefix + strings.Join(items, ", ")
}
