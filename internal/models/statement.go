package models

import (
	"sort"
	"time"
)

// MarketSnapshot is externally supplied market data used by valuation ratios
// and the market-value term of the Altman Z-Score.
type MarketSnapshot struct {
	Price             float64   `json:"price"`
	SharesOutstanding float64   `json:"shares_outstanding"`
	MarketCap         float64   `json:"market_cap"`
	Currency          string    `json:"currency"`
	AsOf              time.Time `json:"as_of"`
	Source            string    `json:"source"`
}

// CalculatedFields are derived from a statement's raw fields. A nil pointer
// means the ratio could not be computed, never a true zero.
type CalculatedFields struct {
	RevenueCr           *float64 `json:"revenue_cr,omitempty"`
	NetProfitCr         *float64 `json:"net_profit_cr,omitempty"`
	AssetsCr            *float64 `json:"assets_cr,omitempty"`
	EquityCr            *float64 `json:"equity_cr,omitempty"`
	TotalDebtCr         *float64 `json:"total_debt_cr,omitempty"`
	OperatingCashFlowCr *float64 `json:"operating_cash_flow_cr,omitempty"`
	MarketCapCr         *float64 `json:"market_cap_cr,omitempty"`

	EPS               *float64 `json:"eps,omitempty"`
	BookValuePerShare *float64 `json:"book_value_per_share,omitempty"`
	ROE               *float64 `json:"roe,omitempty"`
	ROA               *float64 `json:"roa,omitempty"`
	PE                *float64 `json:"pe,omitempty"`
	PB                *float64 `json:"pb,omitempty"`

	NetMargin       *float64 `json:"net_margin,omitempty"`
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	EBITDAMargin    *float64 `json:"ebitda_margin,omitempty"`
	DebtToEquity    *float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio    *float64 `json:"current_ratio,omitempty"`
	AssetTurnover   *float64 `json:"asset_turnover,omitempty"`

	CASARatio   *float64 `json:"casa_ratio,omitempty"`
	NIM         *float64 `json:"nim,omitempty"`
	NetNPARatio *float64 `json:"net_npa_ratio,omitempty"`
}

// NormalizedStatement is the durable per-period record produced by the
// pipeline. Downstream consumers only read it.
type NormalizedStatement struct {
	Period         FilingPeriod     `json:"period"`
	Dialect        Dialect          `json:"dialect"`
	IsBanking      bool             `json:"is_banking"`
	Currency       string           `json:"currency"`
	Fields         Fields           `json:"fields"`
	Calculated     CalculatedFields `json:"calculated"`
	Market         *MarketSnapshot  `json:"market,omitempty"`
	Derived        []Field          `json:"derived,omitempty"`
	Sources        map[Field]string `json:"sources,omitempty"`
	Warnings       []string         `json:"warnings,omitempty"`
	Synthesized    bool             `json:"synthesized"`
	SourceDocument string           `json:"source_document,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Key returns the statement's primary key.
func (s *NormalizedStatement) Key() string {
	return s.Period.Key()
}

// Value returns a raw field value and whether it is present.
func (s *NormalizedStatement) Value(f Field) (float64, bool) {
	if s == nil {
		return 0, false
	}
	return s.Fields.Get(f)
}

// SortNewestFirst orders statements by end date descending. On equal end
// dates an annual statement precedes the quarter it closes.
func SortNewestFirst(stmts []*NormalizedStatement) {
	sort.SliceStable(stmts, func(i, j int) bool {
		a, b := stmts[i].Period, stmts[j].Period
		if !a.EndDate.Equal(b.EndDate) {
			return a.EndDate.After(b.EndDate)
		}
		if a.IsAnnual != b.IsAnnual {
			return a.IsAnnual
		}
		return a.StatementType < b.StatementType
	})
}
