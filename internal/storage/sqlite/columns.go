package sqlite

import (
	"math"

	"github.com/ternarybob/scrutor/internal/models"
)

// rawColumn maps a canonical field to its column. Monetary and share counts
// are stored as integers (unscaled rupees, whole shares); per-share values as
// REAL.
type rawColumn struct {
	field   models.Field
	name    string
	integer bool
}

func rawColumns() []rawColumn {
	specs := models.AllFields()
	cols := make([]rawColumn, 0, len(specs))
	for _, spec := range specs {
		cols = append(cols, rawColumn{
			field:   spec.Field,
			name:    spec.Column,
			integer: spec.Unit != models.UnitPerShare,
		})
	}
	return cols
}

func (c rawColumn) sqlType() string {
	if c.integer {
		return "INTEGER"
	}
	return "REAL"
}

// value returns the bind value for a field; nil means NULL (not reported).
func (c rawColumn) value(f models.Fields) any {
	v, ok := f.Get(c.field)
	if !ok {
		return nil
	}
	if c.integer {
		return int64(math.Round(v))
	}
	return v
}

// calcColumn maps a calculated field to its column.
type calcColumn struct {
	name string
	ptr  func(*models.CalculatedFields) **float64
}

var calcColumns = []calcColumn{
	{"calc_revenue_cr", func(c *models.CalculatedFields) **float64 { return &c.RevenueCr }},
	{"calc_net_profit_cr", func(c *models.CalculatedFields) **float64 { return &c.NetProfitCr }},
	{"calc_assets_cr", func(c *models.CalculatedFields) **float64 { return &c.AssetsCr }},
	{"calc_equity_cr", func(c *models.CalculatedFields) **float64 { return &c.EquityCr }},
	{"calc_total_debt_cr", func(c *models.CalculatedFields) **float64 { return &c.TotalDebtCr }},
	{"calc_operating_cash_flow_cr", func(c *models.CalculatedFields) **float64 { return &c.OperatingCashFlowCr }},
	{"calc_market_cap_cr", func(c *models.CalculatedFields) **float64 { return &c.MarketCapCr }},
	{"calc_eps", func(c *models.CalculatedFields) **float64 { return &c.EPS }},
	{"calc_book_value_per_share", func(c *models.CalculatedFields) **float64 { return &c.BookValuePerShare }},
	{"calc_roe", func(c *models.CalculatedFields) **float64 { return &c.ROE }},
	{"calc_roa", func(c *models.CalculatedFields) **float64 { return &c.ROA }},
	{"calc_pe", func(c *models.CalculatedFields) **float64 { return &c.PE }},
	{"calc_pb", func(c *models.CalculatedFields) **float64 { return &c.PB }},
	{"calc_net_margin", func(c *models.CalculatedFields) **float64 { return &c.NetMargin }},
	{"calc_operating_margin", func(c *models.CalculatedFields) **float64 { return &c.OperatingMargin }},
	{"calc_ebitda_margin", func(c *models.CalculatedFields) **float64 { return &c.EBITDAMargin }},
	{"calc_debt_to_equity", func(c *models.CalculatedFields) **float64 { return &c.DebtToEquity }},
	{"calc_current_ratio", func(c *models.CalculatedFields) **float64 { return &c.CurrentRatio }},
	{"calc_asset_turnover", func(c *models.CalculatedFields) **float64 { return &c.AssetTurnover }},
	{"calc_casa_ratio", func(c *models.CalculatedFields) **float64 { return &c.CASARatio }},
	{"calc_nim", func(c *models.CalculatedFields) **float64 { return &c.NIM }},
	{"calc_net_npa_ratio", func(c *models.CalculatedFields) **float64 { return &c.NetNPARatio }},
}

func calcValues(calc models.CalculatedFields) []any {
	out := make([]any, len(calcColumns))
	for i, col := range calcColumns {
		if p := *col.ptr(&calc); p != nil {
			out[i] = *p
		}
	}
	return out
}
