package forensic

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/metrics"
)

func annual(fy int, f models.Fields) *models.NormalizedStatement {
	return &models.NormalizedStatement{
		Period: models.FilingPeriod{Symbol: "ACME", FiscalYear: fy, Quarter: models.QuarterAnnual, IsAnnual: true},
		Fields: f,
	}
}

// Beneish

func steadyYear() models.Fields {
	return models.Fields{
		models.Revenue:                1000,
		models.Assets:                 2000,
		models.NetProfit:              100,
		models.OperatingCashFlow:      100,
		models.Receivables:            100,
		models.CostOfMaterials:        600,
		models.CurrentAssets:          800,
		models.PropertyPlantEquipment: 600,
		models.Depreciation:           50,
		models.EmployeeBenefits:       100,
		models.CurrentLiabilities:     300,
		models.NonCurrentBorrowings:   200,
	}
}

func TestCalculateBeneish(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c models.Fields)
		wantM     float64
		wantRisk  models.RiskLevel
		wantHeld  []string
		wantLabel string
	}{
		{
			name:      "all indices neutral",
			mutate:    func(models.Fields) {},
			wantM:     -2.48,
			wantRisk:  models.RiskMedium,
			wantLabel: "possible manipulator",
		},
		{
			name: "accruals push past -2.22",
			mutate: func(c models.Fields) {
				c[models.NetProfit] = 200
				c[models.OperatingCashFlow] = 0
			},
			wantM:     -2.48 + 4.679*0.1,
			wantRisk:  models.RiskHigh,
			wantLabel: "likely manipulator",
		},
		{
			name: "falling receivables and accruals",
			mutate: func(c models.Fields) {
				c[models.Receivables] = 50
				c[models.OperatingCashFlow] = 300
			},
			wantM:     -2.48 - 0.92*0.5 + 4.679*(-0.1),
			wantRisk:  models.RiskLow,
			wantLabel: "unlikely manipulator",
		},
		{
			name:      "missing receivables held neutral",
			mutate:    func(c models.Fields) { delete(c, models.Receivables) },
			wantM:     -2.48,
			wantRisk:  models.RiskMedium,
			wantHeld:  []string{"DSRI"},
			wantLabel: "possible manipulator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := steadyYear()
			tt.mutate(c)
			res := CalculateBeneish(annual(2025, c), annual(2024, steadyYear()), DefaultConfig())

			require.True(t, res.Available(), res.Reason)
			assert.InDelta(t, tt.wantM, *res.Score, 1e-9)
			assert.Equal(t, tt.wantRisk, res.Risk)
			assert.Equal(t, tt.wantLabel, res.Label)
			assert.Equal(t, tt.wantHeld, res.MissingInputs)
			assert.Len(t, res.Components, 8)
		})
	}
}

func TestCalculateBeneish_NeedsPriorYear(t *testing.T) {
	res := CalculateBeneish(annual(2025, steadyYear()), nil, DefaultConfig())
	assert.Equal(t, models.StatusInsufficientData, res.Status)
	assert.Nil(t, res.Score)
	assert.False(t, IsManipulator(res))

	prev := steadyYear()
	delete(prev, models.Revenue)
	res = CalculateBeneish(annual(2025, steadyYear()), annual(2024, prev), DefaultConfig())
	assert.Equal(t, models.StatusInsufficientData, res.Status)
	assert.Equal(t, []string{"FY2024 Revenue"}, res.MissingInputs)
}

// Altman

func altmanFields() models.Fields {
	return models.Fields{
		models.Assets:             1000,
		models.Liabilities:        600,
		models.CurrentAssets:      500,
		models.CurrentLiabilities: 300,
		models.Reserves:           200,
		models.ProfitBeforeTax:    100,
		models.FinanceCosts:       20,
		models.Revenue:            1500,
		models.Equity:             400,
	}
}

func TestCalculateAltman_Variants(t *testing.T) {
	const x1, x2, x3, x5 = 0.2, 0.2, 0.12, 1.5
	book := 400.0 / 600.0
	zDouble := 6.56*x1 + 3.26*x2 + 6.72*x3 + 1.05*book
	zPrime := 0.717*x1 + 0.847*x2 + 3.107*x3 + 0.420*book + 0.998*x5

	tests := []struct {
		name        string
		opts        AltmanOptions
		market      *models.MarketSnapshot
		wantVariant string
		wantZ       float64
		wantRisk    models.RiskLevel
		wantNote    bool
	}{
		{
			name:        "listed manufacturing uses market value",
			opts:        AltmanOptions{CompanyType: models.CompanyManufacturing, Listed: true},
			market:      &models.MarketSnapshot{MarketCap: 1200},
			wantVariant: VariantZ,
			wantZ:       1.2*x1 + 1.4*x2 + 3.3*x3 + 0.6*2 + 1.0*x5,
			wantRisk:    models.RiskLow,
		},
		{
			name:        "listed manufacturing without market data falls back",
			opts:        AltmanOptions{CompanyType: models.CompanyManufacturing, Listed: true},
			wantVariant: VariantZPrime,
			wantZ:       zPrime,
			wantRisk:    models.RiskMedium,
			wantNote:    true,
		},
		{
			name:        "unlisted manufacturing",
			opts:        AltmanOptions{CompanyType: models.CompanyManufacturing},
			wantVariant: VariantZPrime,
			wantZ:       zPrime,
			wantRisk:    models.RiskMedium,
		},
		{
			name:        "service",
			opts:        AltmanOptions{CompanyType: models.CompanyService, Listed: true},
			wantVariant: VariantZDouble,
			wantZ:       zDouble,
			wantRisk:    models.RiskLow,
		},
		{
			name:        "emerging market",
			opts:        AltmanOptions{CompanyType: models.CompanyEmerging},
			wantVariant: VariantEmerging,
			wantZ:       3.25 + zDouble,
			wantRisk:    models.RiskLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := annual(2025, altmanFields())
			s.Market = tt.market
			res := CalculateAltman(s, tt.opts)

			require.True(t, res.Available(), res.Reason)
			assert.Equal(t, tt.wantVariant, res.Variant)
			assert.InDelta(t, tt.wantZ, *res.Score, 1e-9)
			assert.Equal(t, tt.wantRisk, res.Risk)
			assert.Equal(t, tt.wantNote, strings.Contains(res.Reason, "market cap unavailable"))
		})
	}
}

func TestCalculateAltman_Distress(t *testing.T) {
	f := altmanFields()
	f[models.ProfitBeforeTax] = -300
	f[models.Reserves] = -400
	f[models.Equity] = 100
	f[models.CurrentAssets] = 200

	res := CalculateAltman(annual(2025, f), AltmanOptions{CompanyType: models.CompanyService})
	require.True(t, res.Available())
	assert.Equal(t, models.RiskHigh, res.Risk)
	assert.Equal(t, "distress", res.Label)
	assert.True(t, IsDistressed(res))
}

func TestCalculateAltman_NotApplicableForBanks(t *testing.T) {
	companyTypes := []models.CompanyType{models.CompanyManufacturing, models.CompanyService, models.CompanyEmerging}
	for _, ct := range companyTypes {
		for _, listed := range []bool{true, false} {
			f := altmanFields()
			f[models.Deposits] = 5e10
			f[models.Advances] = 4e10
			s := annual(2025, f)
			s.Market = &models.MarketSnapshot{MarketCap: 1e11}

			res := CalculateAltman(s, AltmanOptions{CompanyType: ct, Listed: listed})
			assert.Equal(t, models.StatusNotApplicable, res.Status)
			assert.Nil(t, res.Score)
			assert.False(t, res.Available())
		}
	}
}

func TestCalculateAltman_MissingInputs(t *testing.T) {
	f := altmanFields()
	delete(f, models.Reserves)
	res := CalculateAltman(annual(2025, f), AltmanOptions{CompanyType: models.CompanyService})
	assert.Equal(t, models.StatusInsufficientData, res.Status)
	assert.Equal(t, []string{"Reserves"}, res.MissingInputs)
}

// Piotroski

func piotroskiBase() (curr, prev models.Fields) {
	prev = models.Fields{
		models.NetProfit:            50,
		models.Assets:               1000,
		models.OperatingCashFlow:    30,
		models.Revenue:              1000,
		models.CostOfMaterials:      500,
		models.CurrentAssets:        200,
		models.CurrentLiabilities:   200,
		models.NonCurrentBorrowings: 400,
		models.NumberOfShares:       100,
	}
	curr = models.Fields{
		models.NetProfit:            -10,
		models.Assets:               1000,
		models.OperatingCashFlow:    -20,
		models.Revenue:              1000,
		models.CostOfMaterials:      600,
		models.CurrentAssets:        100,
		models.CurrentLiabilities:   200,
		models.NonCurrentBorrowings: 500,
		models.NumberOfShares:       110,
	}
	return curr, prev
}

func passedByName(res models.ForensicScoreResult) map[string]bool {
	out := make(map[string]bool, len(res.Components))
	for _, c := range res.Components {
		out[c.Name] = c.Passed != nil && *c.Passed
	}
	return out
}

func TestCalculatePiotroski_BaselineFailsEverything(t *testing.T) {
	c, p := piotroskiBase()
	res := CalculatePiotroski(annual(2025, c), annual(2024, p))

	require.True(t, res.Available())
	assert.Equal(t, 0.0, *res.Score)
	assert.Equal(t, models.RiskHigh, res.Risk)
	assert.True(t, IsWeak(res))
	assert.Len(t, res.Components, 9)
	assert.Empty(t, res.MissingInputs)
}

func TestCalculatePiotroski_Monotonicity(t *testing.T) {
	tests := []struct {
		criterion string
		setup     func(c, p models.Fields)
		flip      func(c, p models.Fields)
	}{
		{CriterionROA, nil, func(c, _ models.Fields) { c[models.NetProfit] = 10 }},
		{CriterionOCF, func(c, _ models.Fields) { c[models.NetProfit] = 10 }, func(c, _ models.Fields) { c[models.OperatingCashFlow] = 5 }},
		{CriterionROADelta, nil, func(_, p models.Fields) { p[models.NetProfit] = -20 }},
		{CriterionAccruals, nil, func(c, _ models.Fields) { c[models.OperatingCashFlow] = -5 }},
		{CriterionLeverage, nil, func(c, _ models.Fields) { c[models.NonCurrentBorrowings] = 300 }},
		{CriterionLiquidity, nil, func(c, _ models.Fields) { c[models.CurrentAssets] = 300 }},
		{CriterionDilution, nil, func(c, _ models.Fields) { c[models.NumberOfShares] = 100 }},
		{CriterionMargin, nil, func(c, _ models.Fields) { c[models.CostOfMaterials] = 400 }},
		{CriterionAssetTurnover, nil, func(c, _ models.Fields) { c[models.Revenue] = 1100 }},
	}

	for _, tt := range tests {
		t.Run(tt.criterion, func(t *testing.T) {
			c, p := piotroskiBase()
			if tt.setup != nil {
				tt.setup(c, p)
			}
			before := CalculatePiotroski(annual(2025, c), annual(2024, p))
			tt.flip(c, p)
			after := CalculatePiotroski(annual(2025, c), annual(2024, p))

			require.True(t, before.Available())
			require.True(t, after.Available())
			assert.Equal(t, *before.Score+1, *after.Score)

			b, a := passedByName(before), passedByName(after)
			assert.False(t, b[tt.criterion])
			assert.True(t, a[tt.criterion])
			for name, passed := range b {
				if name != tt.criterion {
					assert.Equal(t, passed, a[name], "criterion %q changed", name)
				}
			}
		})
	}
}

func TestCalculatePiotroski_MissingInputZeroesOneCriterion(t *testing.T) {
	c, p := piotroskiBase()
	c[models.NumberOfShares] = 90 // passes when present
	with := CalculatePiotroski(annual(2025, c), annual(2024, p))

	delete(c, models.NumberOfShares)
	without := CalculatePiotroski(annual(2025, c), annual(2024, p))

	assert.Equal(t, *with.Score-1, *without.Score)
	assert.Equal(t, []string{CriterionDilution}, without.MissingInputs)
	for _, comp := range without.Components {
		if comp.Name == CriterionDilution {
			assert.Equal(t, "missing NumberOfShares", comp.Note)
			assert.Nil(t, comp.Value)
		}
	}
}

func TestCalculatePiotroski_NeedsPriorYear(t *testing.T) {
	c, _ := piotroskiBase()
	res := CalculatePiotroski(annual(2025, c), nil)
	assert.Equal(t, models.StatusInsufficientData, res.Status)
	assert.Nil(t, res.Score)
}

// Flat profit on growing revenue: margins and asset turnover deteriorate.
func TestScenario_FlatProfitOnGrowingRevenue(t *testing.T) {
	revenue := []float64{1464.1, 1331, 1210, 1100, 1000}
	var stmts []*models.NormalizedStatement
	for i, r := range revenue {
		stmts = append(stmts, annual(2025-i, models.Fields{
			models.Revenue:           r,
			models.NetProfit:         150,
			models.OperatingCashFlow: 200,
			models.Assets:            2000 * math.Pow(1.15, float64(len(revenue)-1-i)),
		}))
	}

	g := metrics.Growth(stmts, 3)
	require.NotNil(t, g.RevenueCAGR)
	require.NotNil(t, g.ProfitCAGR)
	assert.InDelta(t, 0.10, *g.RevenueCAGR, 1e-6)
	assert.InDelta(t, 0.0, *g.ProfitCAGR, 1e-9)

	res := Calculate(stmts, AltmanOptions{CompanyType: models.CompanyManufacturing}, DefaultConfig())
	require.True(t, res.Piotroski.Available())
	passed := passedByName(res.Piotroski)
	assert.False(t, passed[CriterionMargin])
	assert.False(t, passed[CriterionAssetTurnover])
	assert.LessOrEqual(t, *res.Piotroski.Score, 4.0)
}

// J-Score

func TestCalculateJScore_CashFlowDivergence(t *testing.T) {
	year := func(fy int, receivables float64) *models.NormalizedStatement {
		f := models.Fields{
			models.Revenue:           1e10,
			models.NetProfit:         1e9,
			models.OperatingCashFlow: 0.4e9,
		}
		if receivables > 0 {
			f[models.Receivables] = receivables
		}
		return annual(fy, f)
	}

	t.Run("two years both flagged", func(t *testing.T) {
		res := CalculateJScore([]*models.NormalizedStatement{year(2025, 0), year(2024, 0)}, DefaultConfig().JScore)
		require.True(t, res.Available())

		var years []int
		for _, f := range res.Flags {
			assert.Equal(t, FlagCashFlowDivergence, f.Name)
			assert.Equal(t, models.RiskHigh, f.Severity)
			assert.Equal(t, 3, f.Points)
			assert.NotEmpty(t, f.Rationale)
			years = append(years, f.FiscalYear)
		}
		assert.Equal(t, []int{2025, 2024}, years)
		assert.Equal(t, 6.0, *res.Score)
		assert.Equal(t, models.RiskMedium, res.Risk)
	})

	t.Run("oldest year is evaluated", func(t *testing.T) {
		res := CalculateJScore([]*models.NormalizedStatement{year(2025, 0), year(2024, 0), year(2023, 0)}, DefaultConfig().JScore)
		require.Len(t, res.Flags, 3)
		assert.Equal(t, 2023, res.Flags[2].FiscalYear)
		assert.Equal(t, 9.0, *res.Score)
	})

	t.Run("with receivables outgrowing revenue", func(t *testing.T) {
		stmts := []*models.NormalizedStatement{year(2025, 4e9), year(2024, 2e9), year(2023, 1e9)}
		res := CalculateJScore(stmts, DefaultConfig().JScore)
		require.True(t, res.Available())
		assert.Equal(t, 15.0, *res.Score)
		assert.Equal(t, models.RiskHigh, res.Risk)
		assert.True(t, res.HasHighFlag())
	})

	t.Run("receivables below materiality are ignored", func(t *testing.T) {
		stmts := []*models.NormalizedStatement{year(2025, 4e6), year(2024, 2e6), year(2023, 1e6)}
		res := CalculateJScore(stmts, DefaultConfig().JScore)
		assert.Equal(t, 9.0, *res.Score)
	})

	t.Run("input order does not matter", func(t *testing.T) {
		stmts := []*models.NormalizedStatement{year(2023, 1e9), year(2025, 4e9), year(2024, 2e9)}
		res := CalculateJScore(stmts, DefaultConfig().JScore)
		assert.Equal(t, 15.0, *res.Score)
	})
}

func TestCalculateJScore_Flags(t *testing.T) {
	cfg := DefaultConfig().JScore

	tests := []struct {
		name       string
		curr, prev models.Fields
		wantFlag   string
		wantPoints int
	}{
		{
			name:       "moderate divergence",
			curr:       models.Fields{models.NetProfit: 1e9, models.OperatingCashFlow: 0.7e9},
			prev:       models.Fields{},
			wantFlag:   FlagCashFlowDivergence,
			wantPoints: 2,
		},
		{
			name:       "inventory turnover halves",
			curr:       models.Fields{models.Revenue: 1e10, models.Inventories: 2e9},
			prev:       models.Fields{models.Revenue: 1e10, models.Inventories: 1e9},
			wantFlag:   FlagInventoryTurnover,
			wantPoints: 3,
		},
		{
			name:       "other income dominates",
			curr:       models.Fields{models.OtherIncome: 6e8, models.ProfitBeforeTax: 1e9},
			prev:       models.Fields{},
			wantFlag:   FlagOtherIncome,
			wantPoints: 3,
		},
		{
			name:       "other income spike",
			curr:       models.Fields{models.OtherIncome: 2e8, models.ProfitBeforeTax: 1e9},
			prev:       models.Fields{models.OtherIncome: 5e7},
			wantFlag:   FlagOtherIncomeSpike,
			wantPoints: 1,
		},
		{
			name:       "reserves jump without profit",
			curr:       models.Fields{models.Reserves: 2.5e10, models.NetProfit: 1e9, models.DividendsPaid: -2e8},
			prev:       models.Fields{models.Reserves: 2e10},
			wantFlag:   FlagUnexplainedReserves,
			wantPoints: 2,
		},
		{
			name:       "working capital turns negative",
			curr:       models.Fields{models.CurrentAssets: 1e9, models.CurrentLiabilities: 2e9, models.Revenue: 1e10},
			prev:       models.Fields{models.CurrentAssets: 2e9, models.CurrentLiabilities: 1e9, models.Revenue: 1e10},
			wantFlag:   FlagWorkingCapital,
			wantPoints: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateJScore([]*models.NormalizedStatement{annual(2025, tt.curr), annual(2024, tt.prev)}, cfg)
			require.True(t, res.Available())
			require.Len(t, res.Flags, 1, "flags: %+v", res.Flags)
			assert.Equal(t, tt.wantFlag, res.Flags[0].Name)
			assert.Equal(t, tt.wantPoints, res.Flags[0].Points)
			assert.Equal(t, 2025, res.Flags[0].FiscalYear)
		})
	}
}

func TestCalculateJScore_SeriesFlags(t *testing.T) {
	stmts := []*models.NormalizedStatement{
		annual(2025, models.Fields{models.OperatingCashFlow: -1e8, models.CurrentAssets: 3e9, models.Assets: 1e10}),
		annual(2024, models.Fields{models.OperatingCashFlow: -2e8, models.CurrentAssets: 4e9, models.Assets: 1e10}),
		annual(2023, models.Fields{models.OperatingCashFlow: 1e8, models.CurrentAssets: 5e9, models.Assets: 1e10}),
	}
	res := CalculateJScore(stmts, DefaultConfig().JScore)
	require.True(t, res.Available())

	names := map[string]models.ForensicFlag{}
	for _, f := range res.Flags {
		names[f.Name] = f
	}
	require.Contains(t, names, FlagChronicNegativeCash)
	require.Contains(t, names, FlagCurrentAssetsDecline)
	assert.Equal(t, 3, names[FlagChronicNegativeCash].Points)
	assert.Equal(t, models.RiskHigh, names[FlagChronicNegativeCash].Severity)
	assert.Equal(t, 2, names[FlagCurrentAssetsDecline].Points)
	assert.Equal(t, 5.0, *res.Score)
}

func TestCalculateJScore_NeedsTwoYears(t *testing.T) {
	res := CalculateJScore([]*models.NormalizedStatement{annual(2025, models.Fields{})}, DefaultConfig().JScore)
	assert.Equal(t, models.StatusInsufficientData, res.Status)
}

// Composite

func scored(model models.ForensicModel, risk models.RiskLevel, score float64, flags ...models.ForensicFlag) models.ForensicScoreResult {
	return models.ForensicScoreResult{Model: model, Status: models.StatusScored, Score: &score, Risk: risk, Flags: flags}
}

func TestCalculateComposite(t *testing.T) {
	low := func(m models.ForensicModel) models.ForensicScoreResult { return scored(m, models.RiskLow, 1) }
	highFlag := models.ForensicFlag{Name: FlagCashFlowDivergence, Severity: models.RiskHigh, Points: 3}

	tests := []struct {
		name         string
		results      []models.ForensicScoreResult
		wantScore    float64
		wantCoverage float64
		wantRec      models.Recommendation
	}{
		{
			name:         "all low",
			results:      []models.ForensicScoreResult{low(models.ModelBeneish), low(models.ModelAltman), low(models.ModelPiotroski), low(models.ModelJScore)},
			wantScore:    100.0 / 3,
			wantCoverage: 1,
			wantRec:      models.RecommendAcceptable,
		},
		{
			name: "absent model shrinks the denominator",
			results: []models.ForensicScoreResult{
				low(models.ModelBeneish),
				models.NotApplicableResult(models.ModelAltman, "bank"),
				low(models.ModelPiotroski),
				low(models.ModelJScore),
			},
			wantScore:    100.0 / 3,
			wantCoverage: 0.75,
			wantRec:      models.RecommendAcceptable,
		},
		{
			name: "manipulator alone is caution",
			results: []models.ForensicScoreResult{
				scored(models.ModelBeneish, models.RiskHigh, -1.5),
				low(models.ModelAltman), low(models.ModelPiotroski), low(models.ModelJScore),
			},
			wantScore:    50,
			wantCoverage: 1,
			wantRec:      models.RecommendCaution,
		},
		{
			name: "manipulator in distress is avoid",
			results: []models.ForensicScoreResult{
				scored(models.ModelBeneish, models.RiskHigh, -1.5),
				scored(models.ModelAltman, models.RiskHigh, 1.0),
				low(models.ModelPiotroski), low(models.ModelJScore),
			},
			wantScore:    200.0 / 3,
			wantCoverage: 1,
			wantRec:      models.RecommendAvoid,
		},
		{
			name: "high score is avoid",
			results: []models.ForensicScoreResult{
				scored(models.ModelBeneish, models.RiskMedium, -2.3),
				scored(models.ModelAltman, models.RiskHigh, 1.0),
				scored(models.ModelPiotroski, models.RiskHigh, 2),
				scored(models.ModelJScore, models.RiskHigh, 12),
			},
			wantScore:    1100.0 / 12,
			wantCoverage: 1,
			wantRec:      models.RecommendAvoid,
		},
		{
			name: "high-severity flag is caution",
			results: []models.ForensicScoreResult{
				low(models.ModelBeneish), low(models.ModelAltman), low(models.ModelPiotroski),
				scored(models.ModelJScore, models.RiskLow, 3, highFlag),
			},
			wantScore:    100.0 / 3,
			wantCoverage: 1,
			wantRec:      models.RecommendCaution,
		},
		{
			name: "weak fundamentals is monitor",
			results: []models.ForensicScoreResult{
				low(models.ModelBeneish), low(models.ModelAltman),
				scored(models.ModelPiotroski, models.RiskHigh, 2),
				low(models.ModelJScore),
			},
			wantScore:    50,
			wantCoverage: 1,
			wantRec:      models.RecommendMonitor,
		},
		{
			name: "all medium is monitor",
			results: []models.ForensicScoreResult{
				scored(models.ModelBeneish, models.RiskMedium, -2.3),
				scored(models.ModelAltman, models.RiskMedium, 2.0),
				scored(models.ModelPiotroski, models.RiskMedium, 5),
				scored(models.ModelJScore, models.RiskMedium, 7),
			},
			wantScore:    200.0 / 3,
			wantCoverage: 1,
			wantRec:      models.RecommendMonitor,
		},
		{
			name: "high score from low coverage is insufficient data",
			results: []models.ForensicScoreResult{
				scored(models.ModelBeneish, models.RiskHigh, -1.0),
				models.InsufficientDataResult(models.ModelAltman, "missing"),
				models.InsufficientDataResult(models.ModelPiotroski, "missing"),
			},
			wantScore:    100,
			wantCoverage: 0.25,
			wantRec:      models.RecommendInsufficientData,
		},
		{
			name: "half coverage is enough",
			results: []models.ForensicScoreResult{
				scored(models.ModelBeneish, models.RiskHigh, -1.0),
				scored(models.ModelAltman, models.RiskHigh, 0.5),
			},
			wantScore:    100,
			wantCoverage: 0.5,
			wantRec:      models.RecommendAvoid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := CalculateComposite(tt.results, DefaultConfig())
			require.NotNil(t, out.Score)
			assert.InDelta(t, tt.wantScore, *out.Score, 1e-9)
			assert.InDelta(t, tt.wantCoverage, out.DataCoverage, 1e-9)
			assert.Equal(t, tt.wantRec, out.Recommendation)
			assert.Len(t, out.Contributions, 4)
			assert.NotEmpty(t, out.Reasoning)
		})
	}
}

func TestCalculateComposite_NothingScored(t *testing.T) {
	out := CalculateComposite(nil, DefaultConfig())
	assert.Nil(t, out.Score)
	assert.Equal(t, 0.0, out.DataCoverage)
	assert.Equal(t, models.RecommendInsufficientData, out.Recommendation)
}

func TestCalculateComposite_Weights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = map[models.ForensicModel]float64{
		models.ModelBeneish:   2,
		models.ModelAltman:    1,
		models.ModelPiotroski: 1,
		models.ModelJScore:    0,
	}
	out := CalculateComposite([]models.ForensicScoreResult{
		scored(models.ModelBeneish, models.RiskMedium, -2.3),
		scored(models.ModelAltman, models.RiskLow, 3.5),
		models.InsufficientDataResult(models.ModelPiotroski, "missing"),
	}, cfg)

	require.NotNil(t, out.Score)
	assert.InDelta(t, (2*2.0+1*1.0)/(3*3.0)*100, *out.Score, 1e-9)
	assert.InDelta(t, 0.75, out.DataCoverage, 1e-9)
}

func TestCalculate_SkipsNonConsecutivePriorYear(t *testing.T) {
	stmts := []*models.NormalizedStatement{annual(2025, steadyYear()), annual(2023, steadyYear())}
	res := Calculate(stmts, AltmanOptions{CompanyType: models.CompanyManufacturing}, DefaultConfig())
	assert.Equal(t, models.StatusInsufficientData, res.Beneish.Status)
	assert.Equal(t, models.StatusInsufficientData, res.Piotroski.Status)
	assert.True(t, res.JScore.Available())
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		name       string
		curr, prev float64
		want       float64
		ok         bool
	}{
		{"positive base", 150, 100, 0.5, true},
		{"decline", 50, 100, -0.5, true},
		{"loss narrows", -50, -100, 0.5, true},
		{"loss widens", -150, -100, -0.5, true},
		{"loss to profit", 100, -100, 2, true},
		{"zero base", 100, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := growth(tt.curr, tt.prev)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
