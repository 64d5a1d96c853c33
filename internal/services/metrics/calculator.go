// Package metrics derives ratios, scaled values and growth rates from
// normalized statements. Every function is pure.
package metrics

import (
	"fmt"

	"github.com/ternarybob/scrutor/internal/models"
)

// Crore is the display scale for monetary values.
const Crore = 10_000_000.0

// Ratio divides two fields. A missing input is Unavailable; a non-positive
// denominator is Failed and never divided by.
func Ratio(f models.Fields, num, den models.Field) models.Result[float64] {
	n, ok := f.Get(num)
	if !ok {
		return models.Unavailable[float64](fmt.Sprintf("%s missing", num))
	}
	d, ok := f.Get(den)
	if !ok {
		return models.Unavailable[float64](fmt.Sprintf("%s missing", den))
	}
	return Divide(n, d)
}

// Divide returns n/d, failing when d is not positive.
func Divide(n, d float64) models.Result[float64] {
	if d <= 0 {
		return models.Failed[float64](fmt.Sprintf("non-positive denominator %g", d))
	}
	return models.Ok(n / d)
}

func scaled(f models.Fields, field models.Field) *float64 {
	v, ok := f.Get(field)
	if !ok {
		return nil
	}
	cr := v / Crore
	return &cr
}

// EPS prefers the reported basic EPS and falls back to profit per share.
func EPS(f models.Fields) models.Result[float64] {
	if v, ok := f.Get(models.EPSBasic); ok {
		return models.Ok(v)
	}
	return Ratio(f, models.NetProfit, models.NumberOfShares)
}

// SharePrice returns the market price, or market cap per share when only
// the capitalisation was supplied.
func SharePrice(f models.Fields, m *models.MarketSnapshot) models.Result[float64] {
	if m == nil {
		return models.Unavailable[float64]("no market data")
	}
	if m.Price > 0 {
		return models.Ok(m.Price)
	}
	shares := m.SharesOutstanding
	if shares <= 0 {
		shares = f[models.NumberOfShares]
	}
	if m.MarketCap > 0 && shares > 0 {
		return models.Ok(m.MarketCap / shares)
	}
	return models.Unavailable[float64]("market data has no price")
}

// MarketCap returns the supplied capitalisation, or price times shares.
func MarketCap(f models.Fields, m *models.MarketSnapshot) models.Result[float64] {
	if m == nil {
		return models.Unavailable[float64]("no market data")
	}
	if m.MarketCap > 0 {
		return models.Ok(m.MarketCap)
	}
	shares := m.SharesOutstanding
	if shares <= 0 {
		shares = f[models.NumberOfShares]
	}
	if m.Price > 0 && shares > 0 {
		return models.Ok(m.Price * shares)
	}
	return models.Unavailable[float64]("market data has no capitalisation")
}

// Calculate computes every derived field. Ratios are fractions (0.15 is 15%).
func Calculate(f models.Fields, m *models.MarketSnapshot) models.CalculatedFields {
	c := models.CalculatedFields{
		RevenueCr:           scaled(f, models.Revenue),
		NetProfitCr:         scaled(f, models.NetProfit),
		AssetsCr:            scaled(f, models.Assets),
		EquityCr:            scaled(f, models.Equity),
		TotalDebtCr:         scaled(f, models.TotalDebt),
		OperatingCashFlowCr: scaled(f, models.OperatingCashFlow),
	}
	if mc, ok := MarketCap(f, m).Get(); ok {
		cr := mc / Crore
		c.MarketCapCr = &cr
	}

	eps := EPS(f)
	c.EPS = eps.Ptr()
	bvps := Ratio(f, models.Equity, models.NumberOfShares)
	c.BookValuePerShare = bvps.Ptr()

	c.ROE = Ratio(f, models.NetProfit, models.Equity).Ptr()
	c.ROA = Ratio(f, models.NetProfit, models.Assets).Ptr()

	if price, ok := SharePrice(f, m).Get(); ok {
		if e, ok := eps.Get(); ok && e > 0 {
			c.PE = models.Ok(price / e).Ptr()
		}
		if b, ok := bvps.Get(); ok && b > 0 {
			c.PB = models.Ok(price / b).Ptr()
		}
	}

	c.NetMargin = Ratio(f, models.NetProfit, models.Revenue).Ptr()
	c.OperatingMargin = Ratio(f, models.OperatingProfit, models.Revenue).Ptr()
	c.EBITDAMargin = Ratio(f, models.EBITDA, models.Revenue).Ptr()
	c.DebtToEquity = Ratio(f, models.TotalDebt, models.Equity).Ptr()
	c.CurrentRatio = Ratio(f, models.CurrentAssets, models.CurrentLiabilities).Ptr()
	c.AssetTurnover = Ratio(f, models.Revenue, models.Assets).Ptr()

	c.CASARatio = casa(f).Ptr()
	c.NIM = Ratio(f, models.NetInterestIncome, models.Advances).Ptr()
	c.NetNPARatio = Ratio(f, models.NetNPA, models.Advances).Ptr()
	return c
}

func casa(f models.Fields) models.Result[float64] {
	demand, okD := f.Get(models.DemandDeposits)
	savings, okS := f.Get(models.SavingsDeposits)
	if !okD && !okS {
		return models.Unavailable[float64]("no demand or savings deposits")
	}
	total, ok := f.Get(models.Deposits)
	if !ok {
		return models.Unavailable[float64]("deposits missing")
	}
	return Divide(demand+savings, total)
}

// Enrich recomputes a statement's calculated fields from its raw fields and
// market snapshot.
func Enrich(s *models.NormalizedStatement) {
	if s == nil {
		return
	}
	s.Calculated = Calculate(s.Fields, s.Market)
}
