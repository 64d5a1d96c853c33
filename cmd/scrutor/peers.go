package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/scrutor/internal/models"
)

var peersCmd = &cobra.Command{
	Use:   "peers <symbol>",
	Short: "Compare a symbol with its sector peers",
	Long: `Analyzes the symbol and every peer from the sectors file and prints the
model scores side by side. Peers without stored statements are listed as failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runPeers,
}

func init() {
	peersCmd.Flags().IntVar(&analyzeYears, "years", 0, "Annual statements to analyze (default from config)")
	peersCmd.Flags().StringVar(&analyzeType, "type", "", "Statement type (standalone|consolidated, default auto-detect)")
}

func runPeers(cmd *cobra.Command, args []string) error {
	template, err := analysisTemplate(cmd)
	if err != nil {
		return err
	}

	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	symbol := strings.ToUpper(args[0])
	sector, ok := application.Sectors.Lookup(symbol)
	if !ok {
		return fmt.Errorf("%s is not in any sector; set [analysis] sectors_file", symbol)
	}
	symbols := append([]string{symbol}, application.Sectors.Peers(symbol)...)

	outcomes := application.AnalyzeAll(cmd.Context(), symbols, template)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sector: %s\n\n", sector.Name)
	w := newTable(out)
	fmt.Fprintln(w, "SYMBOL\tRECOMMENDATION\tCOMPOSITE\tBENEISH\tALTMAN\tPIOTROSKI\tJ-SCORE\tCOVERAGE")
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "%s\tfailed: %v\t\t\t\t\t\t\n", o.Symbol, o.Err)
			continue
		}
		r := o.Report
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.0f%%\n",
			o.Symbol, r.Composite.Recommendation, score(r.Composite.Score),
			modelScore(r.Beneish), modelScore(r.Altman), modelScore(r.Piotroski), modelScore(r.JScore),
			r.Composite.DataCoverage*100)
	}
	return w.Flush()
}

func score(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func modelScore(r models.ForensicScoreResult) string {
	if !r.Available() {
		return string(r.Status)
	}
	return fmt.Sprintf("%s (%s)", score(r.Score), r.Risk)
}
