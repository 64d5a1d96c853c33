package report

import (
	"fmt"
	"strings"

	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/metrics"
)

var modelTitles = map[models.ForensicModel]string{
	models.ModelBeneish:   "Beneish M-Score",
	models.ModelAltman:    "Altman Z-Score",
	models.ModelPiotroski: "Piotroski F-Score",
	models.ModelJScore:    "J-Score (cash-flow forensics)",
}

// statementColumns are the figures shown per fiscal year, in crore.
var statementColumns = []struct {
	title string
	field models.Field
}{
	{"Revenue", models.Revenue},
	{"Net profit", models.NetProfit},
	{"Operating CF", models.OperatingCashFlow},
	{"Assets", models.Assets},
	{"Equity", models.Equity},
	{"Receivables", models.Receivables},
}

// Markdown renders a report as a markdown document.
func Markdown(r *models.ForensicReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Forensic report: %s\n\n", r.Symbol)
	fmt.Fprintf(&b, "Run `%s` generated %s. %s statements, %s company",
		r.RunID, r.GeneratedAt.Format("2006-01-02 15:04 MST"), r.StatementType, r.CompanyType)
	if r.Listed {
		b.WriteString(" (listed)")
	}
	if r.IsBanking {
		b.WriteString(", banking")
	}
	b.WriteString(".\n\n")
	if r.Sector != "" {
		fmt.Fprintf(&b, "Sector: %s", r.Sector)
		if len(r.Peers) > 0 {
			fmt.Fprintf(&b, ". Peers: %s", strings.Join(r.Peers, ", "))
		}
		b.WriteString(".\n\n")
	}

	writeComposite(&b, r.Composite)

	for _, res := range r.Results() {
		writeModel(&b, res)
	}

	writeStatements(&b, r)
	writeValidation(&b, r)
	writeGrowth(&b, r.Growth)

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeComposite(b *strings.Builder, c models.CompositeRiskScore) {
	b.WriteString("## Recommendation\n\n")
	fmt.Fprintf(b, "**%s**", c.Recommendation)
	if c.Score != nil {
		fmt.Fprintf(b, ", composite risk %.1f/100 (%s)", *c.Score, c.Risk)
	}
	fmt.Fprintf(b, ", data coverage %.0f%%.\n\n", c.DataCoverage*100)
	if c.Reasoning != "" {
		fmt.Fprintf(b, "%s\n\n", c.Reasoning)
	}
	if len(c.Drivers) > 0 {
		for _, d := range c.Drivers {
			fmt.Fprintf(b, "- %s\n", d)
		}
		b.WriteString("\n")
	}

	b.WriteString("| Model | Status | Risk | Weight | Weighted |\n")
	b.WriteString("|-------|--------|------|--------|----------|\n")
	for _, ct := range c.Contributions {
		risk := string(ct.Risk)
		if risk == "" {
			risk = "-"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %.2f | %.2f |\n", modelTitles[ct.Model], ct.Status, risk, ct.Weight, ct.Weighted)
	}
	b.WriteString("\n")
}

func writeModel(b *strings.Builder, res models.ForensicScoreResult) {
	fmt.Fprintf(b, "## %s\n\n", modelTitles[res.Model])

	if !res.Available() {
		fmt.Fprintf(b, "Not scored (%s): %s\n\n", res.Status, res.Reason)
		return
	}

	fmt.Fprintf(b, "Score **%s**", formatScore(res.Score))
	if res.Variant != "" {
		fmt.Fprintf(b, " (%s)", res.Variant)
	}
	fmt.Fprintf(b, ", risk %s", res.Risk)
	if res.Label != "" {
		fmt.Fprintf(b, ": %s", res.Label)
	}
	if res.FiscalYear > 0 {
		fmt.Fprintf(b, ", FY%d", res.FiscalYear)
	}
	b.WriteString(".\n\n")
	if res.Reason != "" {
		fmt.Fprintf(b, "%s\n\n", res.Reason)
	}

	if len(res.Components) > 0 {
		b.WriteString("| Component | Value | Result | Note |\n")
		b.WriteString("|-----------|-------|--------|------|\n")
		for _, c := range res.Components {
			passed := "-"
			if c.Passed != nil {
				passed = "fail"
				if *c.Passed {
					passed = "pass"
				}
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n", c.Name, formatScore(c.Value), passed, cell(c.Note))
		}
		b.WriteString("\n")
	}

	if len(res.Flags) > 0 {
		b.WriteString("| Flag | Severity | Points | FY | Rationale |\n")
		b.WriteString("|------|----------|--------|----|-----------|\n")
		for _, f := range res.Flags {
			fmt.Fprintf(b, "| %s | %s | %d | %d | %s |\n", f.Name, f.Severity, f.Points, f.FiscalYear, cell(f.Rationale))
		}
		b.WriteString("\n")
	}
}

func writeStatements(b *strings.Builder, r *models.ForensicReport) {
	b.WriteString("## Statements (₹ Cr)\n\n")
	if len(r.Statements) == 0 {
		b.WriteString("No annual statements available.\n\n")
		return
	}

	b.WriteString("| FY | Source |")
	sep := "|----|--------|"
	for _, c := range statementColumns {
		fmt.Fprintf(b, " %s |", c.title)
		sep += "------|"
	}
	b.WriteString("\n" + sep + "\n")

	for _, s := range r.Statements {
		source := "annual"
		if s.Synthesized {
			source = "4 quarters"
		}
		fmt.Fprintf(b, "| FY%d | %s |", s.Period.FiscalYear, source)
		for _, c := range statementColumns {
			if v, ok := s.Value(c.field); ok {
				fmt.Fprintf(b, " %.2f |", v/metrics.Crore)
			} else {
				b.WriteString(" - |")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if r.Shortfall != nil {
		fmt.Fprintf(b, "%s.\n\n", r.Shortfall.Error())
	}
}

func writeValidation(b *strings.Builder, r *models.ForensicReport) {
	if len(r.Validations) == 0 {
		return
	}
	b.WriteString("## Data quality\n\n")
	b.WriteString("| Period | Valid | Quality | Completeness | Issues |\n")
	b.WriteString("|--------|-------|---------|--------------|--------|\n")
	for _, v := range r.Validations {
		issues := append(append([]string{}, v.Result.Errors...), v.Result.Warnings...)
		fmt.Fprintf(b, "| %s | %t | %.0f | %.0f%% | %s |\n",
			v.Key, v.Result.Valid, v.Result.QualityScore, v.Result.Completeness, cell(strings.Join(issues, "; ")))
	}
	b.WriteString("\n")

	series := r.SeriesValidation
	if len(series.Errors)+len(series.Warnings) > 0 {
		b.WriteString("Series checks:\n\n")
		for _, e := range series.Errors {
			fmt.Fprintf(b, "- error: %s\n", e)
		}
		for _, w := range series.Warnings {
			fmt.Fprintf(b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
}

func writeGrowth(b *strings.Builder, g models.GrowthMetrics) {
	if g.Years == 0 {
		return
	}
	b.WriteString("## Growth\n\n")
	fmt.Fprintf(b, "- Revenue CAGR (%dy): %s\n", g.Years, formatPercent(g.RevenueCAGR))
	fmt.Fprintf(b, "- Profit CAGR (%dy): %s\n\n", g.Years, formatPercent(g.ProfitCAGR))

	if len(g.RevenueYoY) == 0 {
		return
	}
	b.WriteString("| FY | Revenue YoY | Net profit YoY | Operating CF YoY |\n")
	b.WriteString("|----|-------------|----------------|------------------|\n")
	for i, y := range g.RevenueYoY {
		fmt.Fprintf(b, "| FY%d | %s | %s | %s |\n", y.FiscalYear,
			formatPercent(y.Change), formatPercent(yoyAt(g.NetProfitYoY, i)), formatPercent(yoyAt(g.OperatingCFYoY, i)))
	}
	b.WriteString("\n")
}

func yoyAt(series []models.YoY, i int) *float64 {
	if i < len(series) {
		return series[i].Change
	}
	return nil
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatPercent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

// cell keeps free text from breaking a table row.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", "/")
	return strings.ReplaceAll(s, "\n", " ")
}
