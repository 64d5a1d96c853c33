package taxonomy

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/sector"
	"github.com/ternarybob/scrutor/internal/xbrl"
)

const (
	sebiURI = "http://www.sebi.gov.in/xbrl/2025-03-31/in-capmkt"
	bseURI  = "http://www.bseindia.com/xbrl/fin/2020-03-31/in-bse-fin"
)

type testFact struct {
	name  string
	ctx   string
	unit  string
	value string
}

func buildFiling(prefix, uri string, facts []testFact) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance" xmlns:iso4217="http://www.xbrl.org/2003/iso4217" xmlns:xbrldi="http://xbrl.org/2006/xbrldi" xmlns:%s="%s">`, prefix, uri)
	b.WriteString(`
<xbrli:context id="CurD"><xbrli:entity><xbrli:identifier scheme="x">T</xbrli:identifier></xbrli:entity><xbrli:period><xbrli:startDate>2024-04-01</xbrli:startDate><xbrli:endDate>2025-03-31</xbrli:endDate></xbrli:period></xbrli:context>
<xbrli:context id="PrevD"><xbrli:entity><xbrli:identifier scheme="x">T</xbrli:identifier></xbrli:entity><xbrli:period><xbrli:startDate>2023-04-01</xbrli:startDate><xbrli:endDate>2024-03-31</xbrli:endDate></xbrli:period></xbrli:context>
<xbrli:context id="QtrD"><xbrli:entity><xbrli:identifier scheme="x">T</xbrli:identifier></xbrli:entity><xbrli:period><xbrli:startDate>2025-01-01</xbrli:startDate><xbrli:endDate>2025-03-31</xbrli:endDate></xbrli:period></xbrli:context>
<xbrli:context id="CurI"><xbrli:entity><xbrli:identifier scheme="x">T</xbrli:identifier></xbrli:entity><xbrli:period><xbrli:instant>2025-03-31</xbrli:instant></xbrli:period></xbrli:context>
<xbrli:context id="PrevI"><xbrli:entity><xbrli:identifier scheme="x">T</xbrli:identifier></xbrli:entity><xbrli:period><xbrli:instant>2024-03-31</xbrli:instant></xbrli:period></xbrli:context>
<xbrli:context id="SegD"><xbrli:entity><xbrli:identifier scheme="x">T</xbrli:identifier><xbrli:segment><xbrldi:explicitMember dimension="a:SegmentAxis">a:RetailMember</xbrldi:explicitMember></xbrli:segment></xbrli:entity><xbrli:period><xbrli:startDate>2024-04-01</xbrli:startDate><xbrli:endDate>2025-03-31</xbrli:endDate></xbrli:period></xbrli:context>
<xbrli:unit id="INR"><xbrli:measure>iso4217:INR</xbrli:measure></xbrli:unit>
<xbrli:unit id="PerShare"><xbrli:divide><xbrli:unitNumerator><xbrli:measure>iso4217:INR</xbrli:measure></xbrli:unitNumerator><xbrli:unitDenominator><xbrli:measure>xbrli:shares</xbrli:measure></xbrli:unitDenominator></xbrli:divide></xbrli:unit>
`)
	for _, f := range facts {
		if f.unit == "text" {
			fmt.Fprintf(&b, "<%s:%s contextRef=%q>%s</%s:%s>\n", prefix, f.name, f.ctx, f.value, prefix, f.name)
			continue
		}
		unit := f.unit
		if unit == "" {
			unit = "INR"
		}
		fmt.Fprintf(&b, "<%s:%s contextRef=%q unitRef=%q decimals=\"0\">%s</%s:%s>\n", prefix, f.name, f.ctx, unit, f.value, prefix, f.name)
	}
	b.WriteString("</xbrli:xbrl>")
	return []byte(b.String())
}

func mapFiling(t *testing.T, data []byte) *Mapping {
	t.Helper()
	doc, err := xbrl.Extract(data, xbrl.DefaultOptions())
	require.NoError(t, err)
	return Map(doc)
}

// The same company year tagged under both taxonomy versions.
func companyFacts(names map[models.Field]string) []testFact {
	return []testFact{
		{name: names[models.Revenue], ctx: "CurD", value: "1000000000"},
		{name: names[models.Revenue], ctx: "PrevD", value: "900000000"},
		{name: names[models.Revenue], ctx: "SegD", value: "400000000"},
		{name: "OtherIncome", ctx: "CurD", value: "50000000"},
		{name: "Expenses", ctx: "CurD", value: "800000000"},
		{name: "FinanceCosts", ctx: "CurD", value: "20000000"},
		{name: names[models.Depreciation], ctx: "CurD", value: "30000000"},
		{name: "ProfitBeforeTax", ctx: "CurD", value: "250000000"},
		{name: "TaxExpense", ctx: "CurD", value: "62500000"},
		{name: "ProfitLossForPeriod", ctx: "CurD", value: "187500000"},
		{name: names[models.EPSBasic], ctx: "CurD", unit: "PerShare", value: "18.75"},
		{name: "Assets", ctx: "CurI", value: "5000000000"},
		{name: "Assets", ctx: "PrevI", value: "4500000000"},
		{name: "CurrentAssets", ctx: "CurI", value: "2000000000"},
		{name: "CurrentLiabilities", ctx: "CurI", value: "1200000000"},
		{name: "NoncurrentLiabilities", ctx: "CurI", value: "800000000"},
		{name: "BorrowingsCurrent", ctx: "CurI", value: "300000000"},
		{name: "BorrowingsNoncurrent", ctx: "CurI", value: "500000000"},
		{name: names[models.ShareCapital], ctx: "CurI", value: "100000000"},
		{name: names[models.Reserves], ctx: "CurI", value: "2900000000"},
		{name: "FaceValueOfEquityShareCapital", ctx: "CurD", unit: "PerShare", value: "10"},
		{name: names[models.OperatingCashFlow], ctx: "CurD", value: "210000000"},
	}
}

var sebiNames = map[models.Field]string{
	models.Revenue:           "RevenueFromOperations",
	models.Depreciation:      "DepreciationDepletionAndAmortisationExpense",
	models.EPSBasic:          "BasicEarningsLossPerShareFromContinuingOperations",
	models.ShareCapital:      "EquityShareCapital",
	models.Reserves:          "OtherEquity",
	models.OperatingCashFlow: "CashFlowsFromUsedInOperatingActivities",
}

var bseNames = map[models.Field]string{
	models.Revenue:           "RevenueFromOperations",
	models.Depreciation:      "DepreciationAndAmortisationExpense",
	models.EPSBasic:          "BasicEarningsLossPerShareFromContinuingAndDiscontinuedOperations",
	models.ShareCapital:      "PaidUpValueOfEquityShareCapital",
	models.Reserves:          "ReservesExcludingRevaluationReserves",
	models.OperatingCashFlow: "NetCashFlowsFromUsedInOperatingActivities",
}

func TestMap_DialectEquivalence(t *testing.T) {
	sebi := mapFiling(t, buildFiling("in-capmkt", sebiURI, companyFacts(sebiNames)))
	bse := mapFiling(t, buildFiling("in-bse-fin", bseURI, companyFacts(bseNames)))

	assert.Equal(t, models.DialectSEBI2025, sebi.Dialect)
	assert.Equal(t, models.DialectBSE2020, bse.Dialect)

	require.Equal(t, sebi.Fields.Keys(), bse.Fields.Keys())
	for _, k := range sebi.Fields.Keys() {
		assert.InDelta(t, sebi.Fields[k], bse.Fields[k], 1e-6, "field %s", k)
	}
	assert.ElementsMatch(t, sebi.Derived, bse.Derived)
}

func TestMap_ValuesAndDerivations(t *testing.T) {
	m := mapFiling(t, buildFiling("in-capmkt", sebiURI, companyFacts(sebiNames)))

	tests := []struct {
		field models.Field
		want  float64
	}{
		{models.Revenue, 1_000_000_000},
		{models.Assets, 5_000_000_000},
		{models.NetProfit, 187_500_000},
		{models.EPSBasic, 18.75},
		{models.Equity, 3_000_000_000},
		{models.Liabilities, 2_000_000_000},
		{models.TotalDebt, 800_000_000},
		{models.OperatingExpenses, 750_000_000},
		{models.OperatingProfit, 250_000_000},
		{models.EBITDA, 300_000_000},
		{models.NumberOfShares, 10_000_000},
		{models.FaceValue, 10},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			v, ok := m.Fields.Get(tt.field)
			require.True(t, ok)
			assert.InDelta(t, tt.want, v, 1e-6)
		})
	}

	assert.False(t, m.Banking)
	assert.Equal(t, "in-capmkt:RevenueFromOperations@CurD", m.Sources[models.Revenue])
	assert.Equal(t, "in-capmkt:Assets@CurI", m.Sources[models.Assets])
	assert.Equal(t, derivedSource, m.Sources[models.Equity])
	assert.Contains(t, m.Derived, models.Equity)
	assert.NotContains(t, m.Derived, models.Revenue)
}

func TestMap_DurationSelection(t *testing.T) {
	facts := []testFact{
		{name: "RevenueFromOperations", ctx: "CurD", value: "1000"},
		{name: "RevenueFromOperations", ctx: "QtrD", value: "260"},
		{name: "RevenueFromOperations", ctx: "PrevD", value: "900"},
	}

	t.Run("shortest span ending on the period end", func(t *testing.T) {
		m := mapFiling(t, buildFiling("in-capmkt", sebiURI, facts))
		assert.InDelta(t, 260, m.Fields[models.Revenue], 1e-6)
	})

	t.Run("tagged reporting period start wins", func(t *testing.T) {
		tagged := append([]testFact{
			{name: "DateOfStartOfReportingPeriod", ctx: "CurD", unit: "text", value: "2024-04-01"},
			{name: "DateOfEndOfReportingPeriod", ctx: "CurD", unit: "text", value: "2025-03-31"},
		}, facts...)
		m := mapFiling(t, buildFiling("in-capmkt", sebiURI, tagged))
		assert.InDelta(t, 1000, m.Fields[models.Revenue], 1e-6)
	})
}

func TestMap_ExplicitValuesAreNeverOverridden(t *testing.T) {
	facts := append(companyFacts(sebiNames), testFact{name: "Equity", ctx: "CurI", value: "2999000000"})
	m := mapFiling(t, buildFiling("in-capmkt", sebiURI, facts))

	assert.InDelta(t, 2_999_000_000, m.Fields[models.Equity], 1e-6)
	assert.NotContains(t, m.Derived, models.Equity)
}

func TestMap_ContextAxisGuard(t *testing.T) {
	facts := []testFact{
		// flow concept only tagged on an instant context
		{name: "RevenueFromOperations", ctx: "CurI", value: "1000"},
		// balance concept only tagged on a duration context
		{name: "Assets", ctx: "CurD", value: "5000"},
		// only a segment member value
		{name: "ProfitLossForPeriod", ctx: "SegD", value: "77"},
		{name: "OtherIncome", ctx: "CurD", value: "10"},
	}
	m := mapFiling(t, buildFiling("in-capmkt", sebiURI, facts))

	assert.False(t, m.Fields.Has(models.Revenue))
	assert.False(t, m.Fields.Has(models.Assets))
	assert.False(t, m.Fields.Has(models.NetProfit))
	assert.True(t, m.Fields.Has(models.OtherIncome))
	assert.NotEmpty(t, m.Warnings)
}

func TestMap_BankingOverlay(t *testing.T) {
	facts := []testFact{
		{name: "InterestEarned", ctx: "CurD", value: "800000000"},
		{name: "InterestExpended", ctx: "CurD", value: "500000000"},
		{name: "OtherIncome", ctx: "CurD", value: "90000000"},
		{name: "OperatingExpenses", ctx: "CurD", value: "150000000"},
		{name: "NetProfitLossForThePeriod", ctx: "CurD", value: "100000000"},
		{name: "Advances", ctx: "CurI", value: "6000000000"},
		{name: "Deposits", ctx: "CurI", value: "7000000000"},
		{name: "DemandDeposits", ctx: "CurI", value: "1000000000"},
		{name: "SavingsBankDeposits", ctx: "CurI", value: "2000000000"},
		{name: "RevenueFromOperations", ctx: "CurD", value: "0"},
	}
	m := mapFiling(t, buildFiling("in-bse-fin", bseURI, facts))

	require.True(t, m.Banking)
	assert.True(t, sector.IsBanking(sector.FromFields(m.Fields)))
	assert.InDelta(t, 800_000_000, m.Fields[models.Revenue], 1e-6)
	assert.Equal(t, "in-bse-fin:InterestEarned@CurD", m.Sources[models.Revenue])
	assert.InDelta(t, 100_000_000, m.Fields[models.NetProfit], 1e-6)
	assert.InDelta(t, 150_000_000, m.Fields[models.OperatingExpenses], 1e-6)
	assert.InDelta(t, 300_000_000, m.Fields[models.NetInterestIncome], 1e-6)
	assert.Contains(t, m.Derived, models.NetInterestIncome)
	assert.InDelta(t, 2_000_000_000, m.Fields[models.SavingsDeposits], 1e-6)
}

func TestMap_NonBankIgnoresOverlay(t *testing.T) {
	facts := []testFact{
		{name: "RevenueFromOperations", ctx: "CurD", value: "1000"},
		{name: "InterestEarned", ctx: "CurD", value: "40"},
	}
	m := mapFiling(t, buildFiling("in-capmkt", sebiURI, facts))

	assert.False(t, m.Banking)
	assert.False(t, m.Fields.Has(models.InterestIncome))
	assert.InDelta(t, 1000, m.Fields[models.Revenue], 1e-6)
}

func TestMap_UnknownDialectUsesMergedAliases(t *testing.T) {
	facts := []testFact{
		{name: "DepreciationAndAmortisationExpense", ctx: "CurD", value: "30"},
		{name: "EquityShareCapital", ctx: "CurI", value: "100"},
	}
	m := mapFiling(t, buildFiling("acme", "http://example.com/acme", facts))

	assert.Equal(t, models.DialectUnknown, m.Dialect)
	assert.InDelta(t, 30, m.Fields[models.Depreciation], 1e-6)
	assert.InDelta(t, 100, m.Fields[models.ShareCapital], 1e-6)
}

func TestDialects_CoverCanonicalFields(t *testing.T) {
	derivedOnly := map[models.Field]bool{
		models.OperatingExpenses: true,
		models.OperatingProfit:   true,
		models.EBITDA:            true,
		models.TotalDebt:         true,
	}

	for _, d := range Dialects() {
		for _, spec := range models.AllFields() {
			if spec.Banking {
				assert.NotEmpty(t, d.BankingAliases(spec.Field), "%s banking %s", d.ID(), spec.Field)
				continue
			}
			if derivedOnly[spec.Field] {
				continue
			}
			assert.NotEmpty(t, d.Aliases(spec.Field), "%s %s", d.ID(), spec.Field)
		}
	}
}
