package forensic

import (
	"fmt"
	"strings"

	"github.com/ternarybob/scrutor/internal/models"
)

// Piotroski criterion names, in scoring order.
const (
	CriterionROA           = "ROA positive"
	CriterionOCF           = "operating cash flow positive"
	CriterionROADelta      = "ROA improved"
	CriterionAccruals      = "cash flow exceeds net profit"
	CriterionLeverage      = "long-term leverage decreased"
	CriterionLiquidity     = "current ratio improved"
	CriterionDilution      = "no new shares issued"
	CriterionMargin        = "gross margin improved"
	CriterionAssetTurnover = "asset turnover improved"
)

const (
	piotroskiCriteriaCount  = 9
	piotroskiWeakMaximum    = 3
	piotroskiAverageMaximum = 6
)

type criterion struct {
	name string
	eval func(c, p models.Fields) (value float64, passed bool, note string)
}

var piotroskiCriteria = []criterion{
	{CriterionROA, roaPositive},
	{CriterionOCF, ocfPositive},
	{CriterionROADelta, roaImproved},
	{CriterionAccruals, accruals},
	{CriterionLeverage, leverageDecreased},
	{CriterionLiquidity, liquidityImproved},
	{CriterionDilution, noDilution},
	{CriterionMargin, marginImproved},
	{CriterionAssetTurnover, turnoverImproved},
}

// CalculatePiotroski computes the Piotroski F-Score from the current and
// prior fiscal years.
//
// Profitability: ROA > 0, OCF > 0, ROA improved, OCF > net profit.
// Leverage/liquidity: long-term borrowings / assets fell, current ratio
// improved, share count did not grow.
// Efficiency: gross margin improved, asset turnover improved.
//
// Each criterion adds exactly 1 when met and is evaluated on its own. A
// criterion with a missing input scores 0 with the reason in its note.
//
// Risk:
// - 0-3: HIGH (weak)
// - 4-6: MEDIUM
// - 7-9: LOW (strong)
func CalculatePiotroski(curr, prev *models.NormalizedStatement) models.ForensicScoreResult {
	if curr == nil {
		return models.InsufficientDataResult(models.ModelPiotroski, "no current-year statement")
	}
	if prev == nil {
		return models.InsufficientDataResult(models.ModelPiotroski, "prior fiscal year required", "prior year")
	}

	score := 0
	components := make([]models.ScoreComponent, 0, piotroskiCriteriaCount)
	var unevaluated []string
	for _, cr := range piotroskiCriteria {
		value, passed, note := cr.eval(curr.Fields, prev.Fields)
		comp := models.ScoreComponent{Name: cr.name, Passed: boolPtr(passed), Note: note}
		if strings.HasPrefix(note, missingPrefix) {
			unevaluated = append(unevaluated, cr.name)
		} else {
			comp.Value = ptr(value)
		}
		if passed {
			score++
		}
		components = append(components, comp)
	}

	res := models.ForensicScoreResult{
		Model:         models.ModelPiotroski,
		Status:        models.StatusScored,
		Score:         ptr(float64(score)),
		FiscalYear:    curr.Period.FiscalYear,
		Components:    components,
		MissingInputs: unevaluated,
	}
	switch {
	case score <= piotroskiWeakMaximum:
		res.Risk, res.Label = models.RiskHigh, "weak"
	case score <= piotroskiAverageMaximum:
		res.Risk, res.Label = models.RiskMedium, "average"
	default:
		res.Risk, res.Label = models.RiskLow, "strong"
	}
	res.Reason = fmt.Sprintf("F-Score %d/%d (FY%d vs FY%d)", score, piotroskiCriteriaCount, curr.Period.FiscalYear, prev.Period.FiscalYear)
	if len(unevaluated) > 0 {
		res.Reason += fmt.Sprintf("; %d criteria lacked inputs", len(unevaluated))
	}
	return res
}

// IsWeak reports whether a Piotroski result signals weak fundamentals.
func IsWeak(r models.ForensicScoreResult) bool {
	return r.Model == models.ModelPiotroski && r.Available() && r.Risk == models.RiskHigh
}

const missingPrefix = "missing "

func missingNote(fields ...models.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return joinPrefixed(missingPrefix, names)
}

// roa is net profit over year-end total assets.
func roa(f models.Fields) (float64, bool) {
	np, ok1 := f.Get(models.NetProfit)
	a, ok2 := f.Get(models.Assets)
	if !ok1 || !ok2 || a <= 0 {
		return 0, false
	}
	return np / a, true
}

func roaPositive(c, _ models.Fields) (float64, bool, string) {
	r, ok := roa(c)
	if !ok {
		return 0, false, missingNote(models.NetProfit, models.Assets)
	}
	return r, r > 0, ""
}

func ocfPositive(c, _ models.Fields) (float64, bool, string) {
	ocf, ok := c.Get(models.OperatingCashFlow)
	if !ok {
		return 0, false, missingNote(models.OperatingCashFlow)
	}
	return ocf, ocf > 0, ""
}

func roaImproved(c, p models.Fields) (float64, bool, string) {
	rc, ok1 := roa(c)
	rp, ok2 := roa(p)
	if !ok1 || !ok2 {
		return 0, false, missingNote(models.NetProfit, models.Assets)
	}
	return rc - rp, rc > rp, ""
}

func accruals(c, _ models.Fields) (float64, bool, string) {
	ocf, ok1 := c.Get(models.OperatingCashFlow)
	np, ok2 := c.Get(models.NetProfit)
	if !ok1 || !ok2 {
		return 0, false, missingNote(models.OperatingCashFlow, models.NetProfit)
	}
	return ocf - np, ocf > np, ""
}

func leverageDecreased(c, p models.Fields) (float64, bool, string) {
	lev := func(f models.Fields) (float64, bool) {
		b, ok1 := f.Get(models.NonCurrentBorrowings)
		a, ok2 := f.Get(models.Assets)
		if !ok1 || !ok2 || a <= 0 {
			return 0, false
		}
		return b / a, true
	}
	lc, ok1 := lev(c)
	lp, ok2 := lev(p)
	if !ok1 || !ok2 {
		return 0, false, missingNote(models.NonCurrentBorrowings, models.Assets)
	}
	return lc - lp, lc < lp || (lc == 0 && lp == 0), ""
}

func liquidityImproved(c, p models.Fields) (float64, bool, string) {
	cr := func(f models.Fields) (float64, bool) {
		ca, ok1 := f.Get(models.CurrentAssets)
		cl, ok2 := f.Get(models.CurrentLiabilities)
		if !ok1 || !ok2 || cl <= 0 {
			return 0, false
		}
		return ca / cl, true
	}
	rc, ok1 := cr(c)
	rp, ok2 := cr(p)
	if !ok1 || !ok2 {
		return 0, false, missingNote(models.CurrentAssets, models.CurrentLiabilities)
	}
	return rc - rp, rc > rp, ""
}

func noDilution(c, p models.Fields) (float64, bool, string) {
	sc, ok1 := c.Get(models.NumberOfShares)
	sp, ok2 := p.Get(models.NumberOfShares)
	if !ok1 || !ok2 {
		return 0, false, missingNote(models.NumberOfShares)
	}
	return sc - sp, sc <= sp, ""
}

// marginImproved compares gross margins, or net margins when cost of sales
// is not reported.
func marginImproved(c, p models.Fields) (float64, bool, string) {
	rc, ok1 := c.Get(models.Revenue)
	rp, ok2 := p.Get(models.Revenue)
	if !ok1 || !ok2 || rc <= 0 || rp <= 0 {
		return 0, false, missingNote(models.Revenue)
	}
	cc, okC := costOfSales(c)
	cp, okP := costOfSales(p)
	if okC && okP {
		mc, mp := (rc-cc)/rc, (rp-cp)/rp
		return mc - mp, mc > mp, ""
	}
	nc, ok1 := c.Get(models.NetProfit)
	np, ok2 := p.Get(models.NetProfit)
	if !ok1 || !ok2 {
		return 0, false, missingNote(models.CostOfMaterials, models.NetProfit)
	}
	mc, mp := nc/rc, np/rp
	return mc - mp, mc > mp, "net margin used, cost of sales not reported"
}

func turnoverImproved(c, p models.Fields) (float64, bool, string) {
	at := func(f models.Fields) (float64, bool) {
		r, ok1 := f.Get(models.Revenue)
		a, ok2 := f.Get(models.Assets)
		if !ok1 || !ok2 || a <= 0 {
			return 0, false
		}
		return r / a, true
	}
	tc, ok1 := at(c)
	tp, ok2 := at(p)
	if !ok1 || !ok2 {
		return 0, false, missingNote(models.Revenue, models.Assets)
	}
	return tc - tp, tc > tp, ""
}
