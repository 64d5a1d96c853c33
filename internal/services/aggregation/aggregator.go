// Package aggregation rolls quarterly statements up into fiscal years.
package aggregation

import (
	"fmt"
	"sort"

	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/sector"
	"github.com/ternarybob/scrutor/internal/services/metrics"
)

// Result is an annual series, newest first. A shortfall is degraded data,
// not a failure.
type Result struct {
	Statements []*models.NormalizedStatement
	Shortfall  *models.MissingDataError
	Warnings   []string
}

type fiscalYear struct {
	annual   *models.NormalizedStatement
	quarters map[int]*models.NormalizedStatement
}

// Aggregate builds up to years annual statements for one symbol and
// statement type. Actual annual filings are used as-is; other years are
// synthesized only when all four quarters are present. years <= 0 returns
// every available year.
func Aggregate(symbol string, stmts []*models.NormalizedStatement, years int) Result {
	byYear := make(map[int]*fiscalYear)
	for _, s := range stmts {
		if s == nil {
			continue
		}
		fy := byYear[s.Period.FiscalYear]
		if fy == nil {
			fy = &fiscalYear{quarters: make(map[int]*models.NormalizedStatement)}
			byYear[s.Period.FiscalYear] = fy
		}
		if s.Period.IsAnnual {
			fy.annual = s
			continue
		}
		fy.quarters[s.Period.Quarter.Index()] = s
	}

	fyList := make([]int, 0, len(byYear))
	for y := range byYear {
		fyList = append(fyList, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(fyList)))

	var res Result
	var dropped []int
	for _, y := range fyList {
		fy := byYear[y]
		switch {
		case fy.annual != nil:
			res.Statements = append(res.Statements, fy.annual)
		case len(fy.quarters) == 4:
			annual, warnings := Synthesize(fy.quarters)
			res.Statements = append(res.Statements, annual)
			res.Warnings = append(res.Warnings, warnings...)
		default:
			dropped = append(dropped, y)
			res.Warnings = append(res.Warnings, fmt.Sprintf("FY%d has %d of 4 quarters, not aggregated", y, len(fy.quarters)))
		}
	}

	if years > 0 && len(res.Statements) > years {
		res.Statements = res.Statements[:years]
	}
	if years > 0 && len(res.Statements) < years {
		res.Shortfall = &models.MissingDataError{
			Symbol:    symbol,
			Requested: years,
			Available: len(res.Statements),
			Dropped:   dropped,
		}
	}
	return res
}

// Synthesize sums four quarterly statements into one annual statement.
//
// Flow fields are summed, and omitted when any quarter lacks them.
// Balance-sheet fields come from the latest quarter. Per-share flows (EPS,
// dividend per share) are summed. Cash-flow fields are summed for
// non-banks and taken from the latest quarter for banks, whose quarterly
// cash flow is not cumulative.
func Synthesize(quarters map[int]*models.NormalizedStatement) (*models.NormalizedStatement, []string) {
	ordered := make([]*models.NormalizedStatement, 0, 4)
	for i := 1; i <= 4; i++ {
		if q := quarters[i]; q != nil {
			ordered = append(ordered, q)
		}
	}
	first, latest := ordered[0], ordered[len(ordered)-1]
	banking := sector.AnyBanking(ordered)

	out := &models.NormalizedStatement{
		Period: models.FilingPeriod{
			Symbol:        latest.Period.Symbol,
			FiscalYear:    latest.Period.FiscalYear,
			Quarter:       models.QuarterAnnual,
			StatementType: latest.Period.StatementType,
			StartDate:     first.Period.StartDate,
			EndDate:       latest.Period.EndDate,
			IsAnnual:      true,
		},
		Dialect:     latest.Dialect,
		IsBanking:   banking,
		Currency:    latest.Currency,
		Fields:      make(models.Fields),
		Market:      latest.Market,
		Synthesized: true,
		UpdatedAt:   latest.UpdatedAt,
	}

	var warnings []string
	for _, spec := range models.AllFields() {
		switch {
		case spec.Period == models.PeriodInstant:
			if v, ok := latest.Fields.Get(spec.Field); ok {
				out.Fields[spec.Field] = v
			}
		case spec.Period == models.PeriodAny:
			for i := len(ordered) - 1; i >= 0; i-- {
				if v, ok := ordered[i].Fields.Get(spec.Field); ok {
					out.Fields[spec.Field] = v
					break
				}
			}
		case spec.CashFlow && banking:
			if v, ok := latest.Fields.Get(spec.Field); ok {
				out.Fields[spec.Field] = v
			}
		default:
			total, present := 0.0, 0
			for _, q := range ordered {
				if v, ok := q.Fields.Get(spec.Field); ok {
					total += v
					present++
				}
			}
			switch {
			case present == len(ordered):
				out.Fields[spec.Field] = total
			case present > 0:
				warnings = append(warnings, fmt.Sprintf("FY%d %s reported in %d of 4 quarters, omitted", out.Period.FiscalYear, spec.Field, present))
			}
		}
	}

	out.Warnings = append(out.Warnings, warnings...)
	metrics.Enrich(out)
	return out, warnings
}
