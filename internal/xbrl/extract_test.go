package xbrl

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/scrutor/internal/models"
)

const sebiFiling = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
  xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
  xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
  xmlns:xbrldi="http://xbrl.org/2006/xbrldi"
  xmlns:in-capmkt="http://www.sebi.gov.in/xbrl/2025-03-31/in-capmkt">
  <xbrli:context id="OneD">
    <xbrli:entity><xbrli:identifier scheme="http://www.nseindia.com">ACME</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:startDate>2024-04-01</xbrli:startDate><xbrli:endDate>2025-03-31</xbrli:endDate></xbrli:period>
  </xbrli:context>
  <xbrli:context id="OneI">
    <xbrli:entity><xbrli:identifier scheme="http://www.nseindia.com">ACME</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>2025-03-31</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:context id="SegD">
    <xbrli:entity>
      <xbrli:identifier scheme="http://www.nseindia.com">ACME</xbrli:identifier>
      <xbrli:segment><xbrldi:explicitMember dimension="in-capmkt:SegmentAxis">in-capmkt:RetailMember</xbrldi:explicitMember></xbrli:segment>
    </xbrli:entity>
    <xbrli:period><xbrli:startDate>2024-04-01</xbrli:startDate><xbrli:endDate>2025-03-31</xbrli:endDate></xbrli:period>
  </xbrli:context>
  <xbrli:unit id="INR"><xbrli:measure>iso4217:INR</xbrli:measure></xbrli:unit>
  <xbrli:unit id="INRPerShare">
    <xbrli:divide>
      <xbrli:unitNumerator><xbrli:measure>iso4217:INR</xbrli:measure></xbrli:unitNumerator>
      <xbrli:unitDenominator><xbrli:measure>xbrli:shares</xbrli:measure></xbrli:unitDenominator>
    </xbrli:divide>
  </xbrli:unit>
  <in-capmkt:Symbol contextRef="OneD">acme</in-capmkt:Symbol>
  <in-capmkt:NameOfTheCompany contextRef="OneD">Acme Industries Limited</in-capmkt:NameOfTheCompany>
  <in-capmkt:ReportingQuarter contextRef="OneD">Audited</in-capmkt:ReportingQuarter>
  <in-capmkt:NatureOfReportStandaloneConsolidated contextRef="OneD">Consolidated</in-capmkt:NatureOfReportStandaloneConsolidated>
  <in-capmkt:DateOfStartOfReportingPeriod contextRef="OneD">2024-04-01</in-capmkt:DateOfStartOfReportingPeriod>
  <in-capmkt:DateOfEndOfReportingPeriod contextRef="OneD">2025-03-31</in-capmkt:DateOfEndOfReportingPeriod>
  <in-capmkt:RevenueFromOperations contextRef="OneD" unitRef="INR" decimals="-5">1,000,000,000</in-capmkt:RevenueFromOperations>
  <in-capmkt:RevenueFromOperations contextRef="SegD" unitRef="INR" decimals="-5">400000000</in-capmkt:RevenueFromOperations>
  <in-capmkt:ProfitLossForPeriod contextRef="OneD" unitRef="INR" decimals="-5">(25000000)</in-capmkt:ProfitLossForPeriod>
  <in-capmkt:Assets contextRef="OneI" unitRef="INR" decimals="-5">5000000000</in-capmkt:Assets>
  <in-capmkt:BasicEarningsLossPerShareFromContinuingOperations contextRef="OneD" unitRef="INRPerShare" decimals="2">-2.50</in-capmkt:BasicEarningsLossPerShareFromContinuingOperations>
  <in-capmkt:ExceptionalItemsBeforeTax contextRef="OneD" unitRef="INR" xsi:nil="true"/>
</xbrli:xbrl>`

func TestExtract_ContextsUnitsAndFacts(t *testing.T) {
	doc, err := Extract([]byte(sebiFiling), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, models.DialectSEBI2025, doc.Dialect)
	assert.True(t, doc.DialectKnown)
	assert.Equal(t, "INR", doc.Currency)
	assert.False(t, doc.Inline)

	require.Len(t, doc.Contexts, 3)
	assert.True(t, doc.Contexts["OneD"].IsDuration())
	assert.True(t, doc.Contexts["OneI"].IsInstant())
	assert.False(t, doc.Contexts["OneD"].Dimensional)
	assert.True(t, doc.Contexts["SegD"].Dimensional)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), doc.Contexts["OneI"].Instant)

	assert.Equal(t, "iso4217:INR", doc.Units["INRPerShare"].Measure)
	assert.Equal(t, "xbrli:shares", doc.Units["INRPerShare"].Denominator)
	assert.Equal(t, "INR", doc.Units["INR"].Currency())

	byConcept := map[string]Fact{}
	for _, f := range doc.Facts {
		if f.ContextID != "SegD" {
			byConcept[f.Concept] = f
		}
	}

	rev := byConcept["in-capmkt:RevenueFromOperations"]
	assert.True(t, rev.Numeric)
	assert.True(t, rev.Value.Equal(decimal.NewFromInt(1_000_000_000)))
	require.NotNil(t, rev.Decimals)
	assert.Equal(t, -5, *rev.Decimals)

	loss := byConcept["in-capmkt:ProfitLossForPeriod"]
	assert.True(t, loss.Value.Equal(decimal.NewFromInt(-25_000_000)))

	eps := byConcept["in-capmkt:BasicEarningsLossPerShareFromContinuingOperations"]
	assert.Equal(t, "-2.5", eps.Value.String())

	exc := byConcept["in-capmkt:ExceptionalItemsBeforeTax"]
	assert.True(t, exc.Nil)
	assert.False(t, exc.Numeric)
}

func TestExtract_Metadata(t *testing.T) {
	doc, err := Extract([]byte(sebiFiling), DefaultOptions())
	require.NoError(t, err)

	md := doc.Metadata
	assert.Equal(t, "ACME", md.Symbol)
	assert.Equal(t, "Acme Industries Limited", md.CompanyName)
	assert.Equal(t, "Audited", md.Quarter)
	assert.Equal(t, "Consolidated", md.NatureOfReport)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), md.PeriodStart)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), doc.ReportingPeriodEnd())
}

func TestExtract_Deterministic(t *testing.T) {
	a, err := Extract([]byte(sebiFiling), DefaultOptions())
	require.NoError(t, err)
	b, err := Extract([]byte(sebiFiling), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Facts, b.Facts)
	assert.Equal(t, a.Contexts, b.Contexts)
	assert.Equal(t, a.Warnings, b.Warnings)
}

func TestExtract_ParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "malformed xml", input: `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"><xbrli:context id="a">`},
		{name: "wrong root", input: `<report><value>1</value></report>`},
		{name: "empty", input: ``},
		{name: "bad instant", input: `<xbrl xmlns="http://www.xbrl.org/2003/instance"><context id="c"><entity><identifier>X</identifier></entity><period><instant>yesterday</instant></period></context></xbrl>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Extract([]byte(tt.input), DefaultOptions())
			require.Error(t, err)
			assert.Nil(t, doc)
			var perr *models.ParseError
			assert.True(t, errors.As(err, &perr))
		})
	}
}

func TestExtract_UnknownDialectIsNotFatal(t *testing.T) {
	input := `<xbrl xmlns="http://www.xbrl.org/2003/instance" xmlns:acme="http://example.com/acme/2019">
  <context id="D"><entity><identifier>X</identifier></entity><period><startDate>2024-04-01</startDate><endDate>2025-03-31</endDate></period></context>
  <unit id="INR"><measure>iso4217:INR</measure></unit>
  <acme:Revenue contextRef="D" unitRef="INR">100</acme:Revenue>
</xbrl>`

	doc, err := Extract([]byte(input), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, models.DialectUnknown, doc.Dialect)
	assert.False(t, doc.DialectKnown)
	assert.Contains(t, doc.Warnings, "unrecognized taxonomy dialect, using best-effort aliases")
	require.Len(t, doc.Facts, 1)
	assert.Equal(t, "acme:Revenue", doc.Facts[0].Concept)
}

func TestExtract_DuplicateFacts(t *testing.T) {
	build := func(second string) string {
		return `<xbrl xmlns="http://www.xbrl.org/2003/instance" xmlns:in-bse-fin="http://www.bseindia.com/xbrl/fin/2020-03-31/in-bse-fin">
  <context id="D"><entity><identifier>X</identifier></entity><period><startDate>2024-04-01</startDate><endDate>2025-03-31</endDate></period></context>
  <unit id="INR"><measure>iso4217:INR</measure></unit>
  <in-bse-fin:RevenueFromOperations contextRef="D" unitRef="INR" decimals="0">1000000</in-bse-fin:RevenueFromOperations>
  <in-bse-fin:RevenueFromOperations contextRef="D" unitRef="INR" decimals="0">` + second + `</in-bse-fin:RevenueFromOperations>
</xbrl>`
	}

	tests := []struct {
		name      string
		second    string
		ambiguous bool
	}{
		{name: "identical", second: "1000000", ambiguous: false},
		{name: "within tolerance", second: "1000500", ambiguous: false},
		{name: "material difference", second: "1200000", ambiguous: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Extract([]byte(build(tt.second)), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, models.DialectBSE2020, doc.Dialect)
			assert.Len(t, doc.Facts, 2, "duplicates are never dropped")
			assert.Equal(t, tt.ambiguous, doc.IsAmbiguous("in-bse-fin:RevenueFromOperations", "D"))
		})
	}
}

func TestExtract_CurrencyConversion(t *testing.T) {
	input := `<xbrl xmlns="http://www.xbrl.org/2003/instance" xmlns:in-capmkt="http://www.sebi.gov.in/xbrl/2025-03-31/in-capmkt">
  <context id="D"><entity><identifier>X</identifier></entity><period><startDate>2024-04-01</startDate><endDate>2025-03-31</endDate></period></context>
  <unit id="USD"><measure>iso4217:USD</measure></unit>
  <unit id="shares"><measure>xbrli:shares</measure></unit>
  <in-capmkt:ReportingCurrency contextRef="D">USD</in-capmkt:ReportingCurrency>
  <in-capmkt:RevenueFromOperations contextRef="D" unitRef="USD">1000</in-capmkt:RevenueFromOperations>
  <in-capmkt:NumberOfShares contextRef="D" unitRef="shares">500</in-capmkt:NumberOfShares>
</xbrl>`

	t.Run("default rate", func(t *testing.T) {
		doc, err := Extract([]byte(input), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, "USD", doc.ReportedCurrency)
		assert.Equal(t, "INR", doc.Currency)
		assert.True(t, doc.Facts[1].Converted)
		assert.True(t, doc.Facts[1].Value.Equal(decimal.NewFromInt(83000)))
		assert.False(t, doc.Facts[2].Converted, "share counts are not currency")
		assert.True(t, doc.Facts[2].Value.Equal(decimal.NewFromInt(500)))
	})

	t.Run("dated rate wins", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Rates.AddDated("USD", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 85.5)
		opts.Rates.AddDated("USD", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 99)
		doc, err := Extract([]byte(input), opts)
		require.NoError(t, err)
		assert.Equal(t, "85500", doc.Facts[1].Value.String())
	})

	t.Run("missing rate leaves values", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Rates = NewRateTable(nil)
		doc, err := Extract([]byte(input), opts)
		require.NoError(t, err)
		assert.Equal(t, "USD", doc.Currency)
		assert.False(t, doc.Facts[1].Converted)
		assert.NotEmpty(t, doc.Warnings)
	})
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1,234,567", want: "1234567"},
		{in: " 12.50 ", want: "12.5"},
		{in: "(1,000)", want: "-1000"},
		{in: "-42", want: "-42"},
		{in: "₹ 1,00,000", want: "100000"},
		{in: "-", want: "0"},
		{in: "", wantErr: true},
		{in: "n/a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
