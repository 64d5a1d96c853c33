package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/models"
)

func f(v float64) *float64 { return &v }

func b(v bool) *bool { return &v }

func sampleReport() *models.ForensicReport {
	return &models.ForensicReport{
		RunID:         "run_test",
		Symbol:        "ACME",
		StatementType: models.StatementConsolidated,
		CompanyType:   models.CompanyManufacturing,
		Listed:        true,
		Sector:        "Industrials",
		Peers:         []string{"WIDGET"},
		GeneratedAt:   time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		Statements: []*models.NormalizedStatement{{
			Period: models.FilingPeriod{Symbol: "ACME", FiscalYear: 2025, Quarter: models.QuarterAnnual, IsAnnual: true},
			Fields: models.Fields{models.Revenue: 1e10, models.NetProfit: 1e9},
		}},
		Shortfall: &models.MissingDataError{Symbol: "ACME", Requested: 5, Available: 1},
		Validations: []models.StatementValidation{{
			Key:        "ACME|2025|ANNUAL|consolidated",
			FiscalYear: 2025,
			Result:     models.ValidationResult{Valid: true, QualityScore: 90, Completeness: 75, Warnings: []string{"missing critical fields: equity"}},
		}},
		Beneish: models.ForensicScoreResult{
			Model:      models.ModelBeneish,
			Status:     models.StatusScored,
			Score:      f(-1.9),
			Risk:       models.RiskHigh,
			Label:      "likely manipulator",
			FiscalYear: 2025,
			Components: []models.ScoreComponent{{Name: "DSRI", Value: f(1.4), Note: "receivables | revenue"}},
		},
		Altman:    models.NotApplicableResult(models.ModelAltman, "not applicable to banks"),
		Piotroski: models.ForensicScoreResult{Model: models.ModelPiotroski, Status: models.StatusScored, Score: f(6), Risk: models.RiskMedium, Components: []models.ScoreComponent{{Name: "ROA > 0", Passed: b(true)}}},
		JScore: models.ForensicScoreResult{
			Model: models.ModelJScore, Status: models.StatusScored, Score: f(7), Risk: models.RiskMedium,
			Flags: []models.ForensicFlag{{Name: "profit without cash", Severity: models.RiskHigh, Points: 3, FiscalYear: 2025, Rationale: "OCF below 50% of profit"}},
		},
		Composite: models.CompositeRiskScore{
			Score:          f(75),
			DataCoverage:   0.75,
			Risk:           models.RiskHigh,
			Recommendation: models.RecommendAvoid,
			Reasoning:      "likely manipulator with a high-severity cash-flow flag",
			Contributions:  []models.CompositeContribution{{Model: models.ModelBeneish, Status: models.StatusScored, Risk: models.RiskHigh, Bucket: 3, Weight: 1, Weighted: 3, Evaluated: true}},
		},
		Warnings: []string{"no market data provider configured"},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())

	for _, want := range []string{
		"# Forensic report: ACME",
		"**AVOID**, composite risk 75.0/100 (HIGH), data coverage 75%",
		"## Beneish M-Score",
		"Score **-1.90**, risk HIGH: likely manipulator, FY2025.",
		"| DSRI | 1.40 | - | receivables / revenue |",
		"Not scored (not_applicable): not applicable to banks",
		"| ROA > 0 | - | pass | - |",
		"| profit without cash | HIGH | 3 | 2025 | OCF below 50% of profit |",
		"| FY2025 | annual | 1000.00 | 100.00 | - |",
		"missing data for ACME: requested 5 years, 1 available",
		"- no market data provider configured",
		"Peers: WIDGET",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "## Growth", "no growth section without a span")
}

func TestRender(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	report := sampleReport()

	t.Run("json", func(t *testing.T) {
		out, err := svc.Render(report, FormatJSON)
		require.NoError(t, err)
		var decoded models.ForensicReport
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.Equal(t, "run_test", decoded.RunID)
		assert.Equal(t, models.RecommendAvoid, decoded.Composite.Recommendation)
	})

	t.Run("markdown", func(t *testing.T) {
		out, err := svc.Render(report, FormatMarkdown)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(out), "# Forensic report: ACME"))
	})

	t.Run("pdf", func(t *testing.T) {
		out, err := svc.Render(report, FormatPDF)
		require.NoError(t, err)
		require.Greater(t, len(out), 500)
		assert.Equal(t, "%PDF", string(out[:4]))
	})

	t.Run("nil report", func(t *testing.T) {
		_, err := svc.Render(nil, FormatPDF)
		assert.Error(t, err)
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"MD", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{" pdf ", FormatPDF, false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}
