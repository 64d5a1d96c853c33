package forensic

import (
	"fmt"
	"math"
	"sort"

	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/sector"
)

// J-Score flag names.
const (
	FlagCashFlowDivergence   = "Cash Flow Divergence"
	FlagReceivablesGrowth    = "Receivables Outgrowing Revenue"
	FlagInventoryTurnover    = "Inventory Turnover Decline"
	FlagOtherIncome          = "Other Income Dependency"
	FlagOtherIncomeSpike     = "Other Income Spike"
	FlagUnexplainedReserves  = "Unexplained Reserves Movement"
	FlagWorkingCapital       = "Working Capital Deterioration"
	FlagChronicNegativeCash  = "Chronic Negative Operating Cash Flow"
	FlagCurrentAssetsDecline = "Current Assets Share Decline"
)

// J-Score risk bands.
const (
	JScoreLowMaximum    = 5
	JScoreMediumMaximum = 10
)

// CalculateJScore scans a newest-first annual series for cash-flow and
// balance-sheet red flags. At least two years are required.
//
// Per year, oldest included:
// - OCF / net profit < 0.8 (2 pts), < 0.5 or negative OCF (3 pts)
//
// Per consecutive year pair (flag year is the later year):
// - receivables growth minus revenue growth > 10pp (1), > 25pp (2), > 50pp (3)
// - inventory turnover decline >= 15% (1), >= 30% (2), >= 50% (3)
// - other income >= 30% (2) or >= 50% (3) of PBT, or a spike (1)
// - reserves movement net of profit and dividends >= 1x/2x/5x floor (1/2/3)
// - working capital / revenue down 10pp (1), 20pp (2), turned negative (3)
//
// Whole series:
// - negative OCF in two or more years (3 pts)
// - current assets / total assets down 10pp oldest to newest (2 pts)
//
// Score bands: 0-5 LOW, 6-10 MEDIUM, 11+ HIGH. Flags on balances below their
// materiality floor are suppressed.
func CalculateJScore(stmts []*models.NormalizedStatement, cfg JScoreConfig) models.ForensicScoreResult {
	series := make([]*models.NormalizedStatement, 0, len(stmts))
	for _, s := range stmts {
		if s != nil {
			series = append(series, s)
		}
	}
	if len(series) < 2 {
		return models.InsufficientDataResult(models.ModelJScore, "at least two fiscal years required", "prior year")
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Period.FiscalYear > series[j].Period.FiscalYear
	})

	banking := sector.AnyBanking(series)
	var flags []models.ForensicFlag
	for _, s := range series {
		if flag, ok := cashFlowDivergence(s.Fields); ok {
			flag.FiscalYear = s.Period.FiscalYear
			flag.Severity = riskForPoints(flag.Points)
			flags = append(flags, flag)
		}
	}
	for i := 0; i+1 < len(series); i++ {
		curr, prev := series[i], series[i+1]
		fy := curr.Period.FiscalYear
		c, p := curr.Fields, prev.Fields

		pair := []func() (models.ForensicFlag, bool){
			func() (models.ForensicFlag, bool) { return receivablesGrowth(c, p, cfg) },
			func() (models.ForensicFlag, bool) { return otherIncome(c, p, cfg) },
			func() (models.ForensicFlag, bool) { return unexplainedReserves(c, p, cfg) },
		}
		if !banking {
			pair = append(pair,
				func() (models.ForensicFlag, bool) { return inventoryTurnover(c, p, cfg) },
				func() (models.ForensicFlag, bool) { return workingCapital(c, p) },
			)
		}
		for _, check := range pair {
			if flag, ok := check(); ok {
				flag.FiscalYear = fy
				flag.Severity = riskForPoints(flag.Points)
				flags = append(flags, flag)
			}
		}
	}
	if flag, ok := chronicNegativeCash(series); ok {
		flags = append(flags, flag)
	}
	if !banking {
		if flag, ok := currentAssetsDecline(series); ok {
			flags = append(flags, flag)
		}
	}

	total := 0
	byName := map[string]int{}
	var order []string
	for _, f := range flags {
		total += f.Points
		if _, seen := byName[f.Name]; !seen {
			order = append(order, f.Name)
		}
		byName[f.Name] += f.Points
	}
	components := make([]models.ScoreComponent, 0, len(order))
	for _, name := range order {
		components = append(components, models.ScoreComponent{Name: name, Value: ptr(float64(byName[name]))})
	}

	res := models.ForensicScoreResult{
		Model:      models.ModelJScore,
		Status:     models.StatusScored,
		Score:      ptr(float64(total)),
		FiscalYear: series[0].Period.FiscalYear,
		Components: components,
		Flags:      flags,
	}
	switch {
	case total <= JScoreLowMaximum:
		res.Risk, res.Label = models.RiskLow, "low"
	case total <= JScoreMediumMaximum:
		res.Risk, res.Label = models.RiskMedium, "medium"
	default:
		res.Risk, res.Label = models.RiskHigh, "high"
	}
	res.Reason = fmt.Sprintf("J-Score %d from %d flags over %d years", total, len(flags), len(series))
	return res
}

func cashFlowDivergence(c models.Fields) (models.ForensicFlag, bool) {
	np, ok1 := c.Get(models.NetProfit)
	ocf, ok2 := c.Get(models.OperatingCashFlow)
	if !ok1 || !ok2 || np <= 0 {
		return models.ForensicFlag{}, false
	}
	ratio := ocf / np
	points := 0
	switch {
	case ocf < 0 || ratio < 0.5:
		points = 3
	case ratio < 0.8:
		points = 2
	default:
		return models.ForensicFlag{}, false
	}
	return models.ForensicFlag{
		Name:      FlagCashFlowDivergence,
		Points:    points,
		Rationale: fmt.Sprintf("operating cash flow is %.0f%% of net profit", ratio*100),
	}, true
}

func receivablesGrowth(c, p models.Fields, cfg JScoreConfig) (models.ForensicFlag, bool) {
	rc, ok1 := c.Get(models.Receivables)
	rp, ok2 := p.Get(models.Receivables)
	if !ok1 || !ok2 || rc < cfg.ReceivablesMateriality || rp < cfg.ReceivablesMateriality {
		return models.ForensicFlag{}, false
	}
	sc, ok1 := c.Get(models.Revenue)
	sp, ok2 := p.Get(models.Revenue)
	if !ok1 || !ok2 || sp <= 0 {
		return models.ForensicFlag{}, false
	}
	recGrowth, _ := growth(rc, rp)
	revGrowth, _ := growth(sc, sp)
	gap := recGrowth - revGrowth
	points := 0
	switch {
	case gap > 0.50:
		points = 3
	case gap > 0.25:
		points = 2
	case gap > 0.10:
		points = 1
	default:
		return models.ForensicFlag{}, false
	}
	return models.ForensicFlag{
		Name:      FlagReceivablesGrowth,
		Points:    points,
		Rationale: fmt.Sprintf("receivables grew %.0f%% against revenue %.0f%%", recGrowth*100, revGrowth*100),
	}, true
}

func inventoryTurnover(c, p models.Fields, cfg JScoreConfig) (models.ForensicFlag, bool) {
	ic, ok1 := c.Get(models.Inventories)
	ip, ok2 := p.Get(models.Inventories)
	if !ok1 || !ok2 || ic < cfg.InventoryMateriality || ip < cfg.InventoryMateriality {
		return models.ForensicFlag{}, false
	}
	turnover := func(f models.Fields, inv float64) (float64, bool) {
		if cogs, ok := costOfSales(f); ok && cogs > 0 {
			return cogs / inv, true
		}
		if rev, ok := f.Get(models.Revenue); ok && rev > 0 {
			return rev / inv, true
		}
		return 0, false
	}
	tc, ok1 := turnover(c, ic)
	tp, ok2 := turnover(p, ip)
	if !ok1 || !ok2 || tp <= 0 {
		return models.ForensicFlag{}, false
	}
	decline := (tp - tc) / tp
	points := 0
	switch {
	case decline >= 0.50:
		points = 3
	case decline >= 0.30:
		points = 2
	case decline >= 0.15:
		points = 1
	default:
		return models.ForensicFlag{}, false
	}
	return models.ForensicFlag{
		Name:      FlagInventoryTurnover,
		Points:    points,
		Rationale: fmt.Sprintf("inventory turnover fell %.0f%% (%.2fx to %.2fx)", decline*100, tp, tc),
	}, true
}

func otherIncome(c, p models.Fields, cfg JScoreConfig) (models.ForensicFlag, bool) {
	oi, ok1 := c.Get(models.OtherIncome)
	pbt, ok2 := c.Get(models.ProfitBeforeTax)
	if !ok1 || !ok2 || pbt <= 0 || oi < cfg.OtherIncomeMateriality {
		return models.ForensicFlag{}, false
	}
	share := oi / pbt
	switch {
	case share >= 0.50:
		return models.ForensicFlag{Name: FlagOtherIncome, Points: 3, Rationale: fmt.Sprintf("other income is %.0f%% of profit before tax", share*100)}, true
	case share >= 0.30:
		return models.ForensicFlag{Name: FlagOtherIncome, Points: 2, Rationale: fmt.Sprintf("other income is %.0f%% of profit before tax", share*100)}, true
	}
	prevOI, ok := p.Get(models.OtherIncome)
	if !ok || prevOI <= 0 {
		return models.ForensicFlag{}, false
	}
	if g, _ := growth(oi, prevOI); g > 1.0 && share >= 0.10 {
		return models.ForensicFlag{
			Name:      FlagOtherIncomeSpike,
			Points:    1,
			Rationale: fmt.Sprintf("other income grew %.0f%% to %.0f%% of profit before tax", g*100, share*100),
		}, true
	}
	return models.ForensicFlag{}, false
}

// unexplainedReserves compares the change in reserves with retained profit
// (net profit less dividends paid).
func unexplainedReserves(c, p models.Fields, cfg JScoreConfig) (models.ForensicFlag, bool) {
	rc, ok1 := c.Get(models.Reserves)
	rp, ok2 := p.Get(models.Reserves)
	np, ok3 := c.Get(models.NetProfit)
	if !ok1 || !ok2 || !ok3 || cfg.ReservesMateriality <= 0 {
		return models.ForensicFlag{}, false
	}
	retained := np - math.Abs(c[models.DividendsPaid])
	gap := math.Abs((rc - rp) - retained)
	multiple := gap / cfg.ReservesMateriality
	points := 0
	switch {
	case multiple >= 5:
		points = 3
	case multiple >= 2:
		points = 2
	case multiple >= 1:
		points = 1
	default:
		return models.ForensicFlag{}, false
	}
	return models.ForensicFlag{
		Name:      FlagUnexplainedReserves,
		Points:    points,
		Rationale: fmt.Sprintf("reserves moved %.0f against retained profit %.0f", rc-rp, retained),
	}, true
}

func workingCapital(c, p models.Fields) (models.ForensicFlag, bool) {
	ratio := func(f models.Fields) (float64, bool) {
		ca, ok1 := f.Get(models.CurrentAssets)
		cl, ok2 := f.Get(models.CurrentLiabilities)
		rev, ok3 := f.Get(models.Revenue)
		if !ok1 || !ok2 || !ok3 || rev <= 0 {
			return 0, false
		}
		return (ca - cl) / rev, true
	}
	wc, ok1 := ratio(c)
	wp, ok2 := ratio(p)
	if !ok1 || !ok2 {
		return models.ForensicFlag{}, false
	}
	drop := wp - wc
	points := 0
	switch {
	case wp >= 0 && wc < 0:
		points = 3
	case drop >= 0.20:
		points = 2
	case drop >= 0.10:
		points = 1
	default:
		return models.ForensicFlag{}, false
	}
	return models.ForensicFlag{
		Name:      FlagWorkingCapital,
		Points:    points,
		Rationale: fmt.Sprintf("working capital / revenue fell from %.2f to %.2f", wp, wc),
	}, true
}

func chronicNegativeCash(series []*models.NormalizedStatement) (models.ForensicFlag, bool) {
	var years []int
	for _, s := range series {
		if ocf, ok := s.Fields.Get(models.OperatingCashFlow); ok && ocf < 0 {
			years = append(years, s.Period.FiscalYear)
		}
	}
	if len(years) < 2 {
		return models.ForensicFlag{}, false
	}
	return models.ForensicFlag{
		Name:       FlagChronicNegativeCash,
		Severity:   models.RiskHigh,
		Points:     3,
		FiscalYear: years[0],
		Rationale:  fmt.Sprintf("operating cash flow negative in %d of %d years %v", len(years), len(series), years),
	}, true
}

func currentAssetsDecline(series []*models.NormalizedStatement) (models.ForensicFlag, bool) {
	share := func(s *models.NormalizedStatement) (float64, bool) {
		ca, ok1 := s.Fields.Get(models.CurrentAssets)
		ta, ok2 := s.Fields.Get(models.Assets)
		if !ok1 || !ok2 || ta <= 0 {
			return 0, false
		}
		return ca / ta, true
	}
	newest, oldest := series[0], series[len(series)-1]
	sn, ok1 := share(newest)
	so, ok2 := share(oldest)
	if !ok1 || !ok2 || so-sn < 0.10 {
		return models.ForensicFlag{}, false
	}
	return models.ForensicFlag{
		Name:       FlagCurrentAssetsDecline,
		Severity:   models.RiskMedium,
		Points:     2,
		FiscalYear: newest.Period.FiscalYear,
		Rationale: fmt.Sprintf("current assets fell from %.0f%% to %.0f%% of total assets between FY%d and FY%d",
			so*100, sn*100, oldest.Period.FiscalYear, newest.Period.FiscalYear),
	}, true
}
