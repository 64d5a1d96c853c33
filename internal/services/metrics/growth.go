package metrics

import (
	"fmt"
	"math"

	"github.com/ternarybob/scrutor/internal/models"
)

// CAGR is the compound annual growth rate between two values. A
// non-positive start or end has no defined rate.
func CAGR(start, end float64, years int) models.Result[float64] {
	if years <= 0 {
		return models.Failed[float64]("years must be positive")
	}
	if start <= 0 || end <= 0 {
		return models.Failed[float64](fmt.Sprintf("cagr undefined for %g -> %g", start, end))
	}
	return models.Ok(math.Pow(end/start, 1/float64(years)) - 1)
}

// YoY is the fractional change from prev to curr.
func YoY(curr, prev float64) models.Result[float64] {
	if prev == 0 {
		return models.Failed[float64]("prior value is zero")
	}
	return models.Ok((curr - prev) / math.Abs(prev))
}

// FieldCAGR computes the growth of a field over the given number of years.
// stmts must be sorted newest first.
func FieldCAGR(stmts []*models.NormalizedStatement, field models.Field, years int) models.Result[float64] {
	if years <= 0 || len(stmts) <= years {
		return models.Unavailable[float64](fmt.Sprintf("need %d years, have %d", years+1, len(stmts)))
	}
	end, ok := stmts[0].Value(field)
	if !ok {
		return models.Unavailable[float64](fmt.Sprintf("%s missing in latest year", field))
	}
	start, ok := stmts[years].Value(field)
	if !ok {
		return models.Unavailable[float64](fmt.Sprintf("%s missing in base year", field))
	}
	return CAGR(start, end, years)
}

// FieldYoY returns one change per consecutive pair, newest first.
func FieldYoY(stmts []*models.NormalizedStatement, field models.Field) []models.YoY {
	if len(stmts) < 2 {
		return nil
	}
	out := make([]models.YoY, 0, len(stmts)-1)
	for i := 0; i+1 < len(stmts); i++ {
		item := models.YoY{FiscalYear: stmts[i].Period.FiscalYear}
		curr, ok1 := stmts[i].Value(field)
		prev, ok2 := stmts[i+1].Value(field)
		if ok1 && ok2 {
			item.Change = YoY(curr, prev).Ptr()
		}
		out = append(out, item)
	}
	return out
}

// Growth summarises growth over up to years periods of a newest-first series.
func Growth(stmts []*models.NormalizedStatement, years int) models.GrowthMetrics {
	span := years
	if span > len(stmts)-1 {
		span = len(stmts) - 1
	}
	if span < 0 {
		span = 0
	}
	g := models.GrowthMetrics{
		Years:          span,
		RevenueYoY:     FieldYoY(stmts, models.Revenue),
		NetProfitYoY:   FieldYoY(stmts, models.NetProfit),
		OperatingCFYoY: FieldYoY(stmts, models.OperatingCashFlow),
	}
	if span > 0 {
		g.RevenueCAGR = FieldCAGR(stmts, models.Revenue, span).Ptr()
		g.ProfitCAGR = FieldCAGR(stmts, models.NetProfit, span).Ptr()
	}
	return g
}
