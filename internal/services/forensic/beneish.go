package forensic

import (
	"fmt"

	"github.com/ternarybob/scrutor/internal/models"
)

// Beneish M-Score coefficients.
const (
	beneishIntercept = -4.84
	beneishDSRI      = 0.920
	beneishGMI       = 0.528
	beneishAQI       = 0.404
	beneishSGI       = 0.892
	beneishDEPI      = 0.115
	beneishSGAI      = -0.172
	beneishTATA      = 4.679
	beneishLVGI      = -0.327
)

// CalculateBeneish computes the Beneish M-Score from the current and prior
// fiscal years.
//
// M = -4.84 + 0.92*DSRI + 0.528*GMI + 0.404*AQI + 0.892*SGI +
// 0.115*DEPI - 0.172*SGAI + 4.679*TATA - 0.327*LVGI
//
// Risk:
// - M > -2.22: HIGH (likely manipulator)
// - M > -2.50: MEDIUM
// - otherwise: LOW
//
// Revenue and assets of both years plus current net profit and operating
// cash flow are required. An index whose other inputs are missing is held
// at its neutral value (1, or 0 for TATA) and noted. No prior year means
// insufficient data, never a zero-filled score.
func CalculateBeneish(curr, prev *models.NormalizedStatement, cfg Config) models.ForensicScoreResult {
	if curr == nil {
		return models.InsufficientDataResult(models.ModelBeneish, "no current-year statement")
	}
	if prev == nil {
		return models.InsufficientDataResult(models.ModelBeneish, "prior fiscal year required", "prior year")
	}

	c, p := curr.Fields, prev.Fields
	var miss []string
	for _, m := range missing(c, models.Revenue, models.Assets, models.NetProfit, models.OperatingCashFlow) {
		miss = append(miss, fmt.Sprintf("FY%d %s", curr.Period.FiscalYear, m))
	}
	for _, m := range missing(p, models.Revenue, models.Assets) {
		miss = append(miss, fmt.Sprintf("FY%d %s", prev.Period.FiscalYear, m))
	}
	if len(miss) > 0 {
		return models.InsufficientDataResult(models.ModelBeneish, joinPrefixed("missing inputs: ", miss), miss...)
	}
	if c[models.Revenue] <= 0 || p[models.Revenue] <= 0 || c[models.Assets] <= 0 || p[models.Assets] <= 0 {
		return models.InsufficientDataResult(models.ModelBeneish, "revenue and assets must be positive in both years")
	}

	var neutral []string
	index := func(name string, v float64, ok bool, fallback float64) models.ScoreComponent {
		if !ok {
			neutral = append(neutral, name)
			return models.ScoreComponent{Name: name, Value: ptr(fallback), Note: "inputs missing, held neutral"}
		}
		return models.ScoreComponent{Name: name, Value: ptr(v)}
	}

	vDSRI, okDSRI := dsri(c, p)
	vGMI, okGMI := gmi(c, p)
	vAQI, okAQI := aqi(c, p)
	vDEPI, okDEPI := depi(c, p)
	vSGAI, okSGAI := sgai(c, p)
	vLVGI, okLVGI := lvgi(c, p)
	vSGI := c[models.Revenue] / p[models.Revenue]
	vTATA := (c[models.NetProfit] - c[models.OperatingCashFlow]) / c[models.Assets]

	components := []models.ScoreComponent{
		index("DSRI", vDSRI, okDSRI, 1),
		index("GMI", vGMI, okGMI, 1),
		index("AQI", vAQI, okAQI, 1),
		index("SGI", vSGI, true, 1),
		index("DEPI", vDEPI, okDEPI, 1),
		index("SGAI", vSGAI, okSGAI, 1),
		index("LVGI", vLVGI, okLVGI, 1),
		index("TATA", vTATA, true, 0),
	}
	v := func(i int) float64 { return *components[i].Value }

	m := beneishIntercept +
		beneishDSRI*v(0) +
		beneishGMI*v(1) +
		beneishAQI*v(2) +
		beneishSGI*v(3) +
		beneishDEPI*v(4) +
		beneishSGAI*v(5) +
		beneishLVGI*v(6) +
		beneishTATA*v(7)

	res := models.ForensicScoreResult{
		Model:      models.ModelBeneish,
		Status:     models.StatusScored,
		Score:      ptr(m),
		FiscalYear: curr.Period.FiscalYear,
		Components: components,
	}
	switch {
	case m > cfg.BeneishHigh:
		res.Risk, res.Label = models.RiskHigh, "likely manipulator"
	case m > cfg.BeneishMedium:
		res.Risk, res.Label = models.RiskMedium, "possible manipulator"
	default:
		res.Risk, res.Label = models.RiskLow, "unlikely manipulator"
	}
	res.Reason = fmt.Sprintf("M-Score %.2f (FY%d vs FY%d)", m, curr.Period.FiscalYear, prev.Period.FiscalYear)
	if len(neutral) > 0 {
		res.Reason += joinPrefixed("; neutral indices: ", neutral)
		res.MissingInputs = neutral
	}
	return res
}

// IsManipulator reports whether a Beneish result crosses the high threshold.
func IsManipulator(r models.ForensicScoreResult) bool {
	return r.Model == models.ModelBeneish && r.Available() && r.Risk == models.RiskHigh
}

// Days sales in receivables index.
func dsri(c, p models.Fields) (float64, bool) {
	rc, ok1 := c.Get(models.Receivables)
	rp, ok2 := p.Get(models.Receivables)
	if !ok1 || !ok2 {
		return 0, false
	}
	return div(rc/c[models.Revenue], rp/p[models.Revenue])
}

// Gross margin index: prior margin over current margin.
func gmi(c, p models.Fields) (float64, bool) {
	cc, ok1 := costOfSales(c)
	cp, ok2 := costOfSales(p)
	if !ok1 || !ok2 {
		return 0, false
	}
	gmC := (c[models.Revenue] - cc) / c[models.Revenue]
	gmP := (p[models.Revenue] - cp) / p[models.Revenue]
	return div(gmP, gmC)
}

// Asset quality index: share of assets outside current assets and PP&E.
func aqi(c, p models.Fields) (float64, bool) {
	soft := func(f models.Fields) (float64, bool) {
		ca, ok1 := f.Get(models.CurrentAssets)
		ppe, ok2 := f.Get(models.PropertyPlantEquipment)
		if !ok1 || !ok2 {
			return 0, false
		}
		return 1 - (ca+ppe)/f[models.Assets], true
	}
	sc, ok1 := soft(c)
	sp, ok2 := soft(p)
	if !ok1 || !ok2 {
		return 0, false
	}
	return div(sc, sp)
}

// Depreciation index: prior depreciation rate over current.
func depi(c, p models.Fields) (float64, bool) {
	rate := func(f models.Fields) (float64, bool) {
		dep, ok1 := f.Get(models.Depreciation)
		ppe, ok2 := f.Get(models.PropertyPlantEquipment)
		if !ok1 || !ok2 {
			return 0, false
		}
		return div(dep, dep+ppe)
	}
	rc, ok1 := rate(c)
	rp, ok2 := rate(p)
	if !ok1 || !ok2 {
		return 0, false
	}
	return div(rp, rc)
}

// Sales, general and administrative expenses index.
func sgai(c, p models.Fields) (float64, bool) {
	sc, ok1 := sellingGeneralAdmin(c)
	sp, ok2 := sellingGeneralAdmin(p)
	if !ok1 || !ok2 {
		return 0, false
	}
	return div(sc/c[models.Revenue], sp/p[models.Revenue])
}

// Leverage index on current liabilities plus long-term borrowings.
func lvgi(c, p models.Fields) (float64, bool) {
	lev := func(f models.Fields) (float64, bool) {
		cl, ok := f.Get(models.CurrentLiabilities)
		if !ok {
			return 0, false
		}
		return (cl + f[models.NonCurrentBorrowings]) / f[models.Assets], true
	}
	lc, ok1 := lev(c)
	lp, ok2 := lev(p)
	if !ok1 || !ok2 {
		return 0, false
	}
	return div(lc, lp)
}
