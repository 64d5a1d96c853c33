package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/analysis"
	"github.com/ternarybob/scrutor/internal/services/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <symbol>...",
	Short: "Run the forensic models for one or more symbols",
	Long: `Aggregates stored statements, enriches them with market data, validates
them and scores the Beneish, Altman, Piotroski and J-Score models. Symbols run
concurrently on the worker pool. With one symbol the report is written to
stdout (or --out); with several, one file per symbol is written to --out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeYears       int
	analyzeType        string
	analyzeCompanyType string
	analyzeUnlisted    bool
	analyzeFormat      string
	analyzeOut         string
)

func init() {
	analyzeCmd.Flags().IntVar(&analyzeYears, "years", 0, "Annual statements to analyze (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeType, "type", "", "Statement type (standalone|consolidated, default auto-detect)")
	analyzeCmd.Flags().StringVar(&analyzeCompanyType, "company-type", "", "Altman company type (manufacturing|service|emerging)")
	analyzeCmd.Flags().BoolVar(&analyzeUnlisted, "unlisted", false, "Score Altman with the private-company variant")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "md", "Report format (md|json|pdf)")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Output file, or directory for several symbols")
}

// analysisTemplate builds the request shared by every symbol from the flags.
func analysisTemplate(cmd *cobra.Command) (analysis.Request, error) {
	req := analysis.Request{Years: analyzeYears}
	if analyzeType != "" {
		st, ok := models.ParseStatementType(analyzeType)
		if !ok {
			return req, fmt.Errorf("invalid --type %q", analyzeType)
		}
		req.StatementType = st
	}
	if analyzeCompanyType != "" {
		ct, ok := models.ParseCompanyType(analyzeCompanyType)
		if !ok {
			return req, fmt.Errorf("invalid --company-type %q", analyzeCompanyType)
		}
		req.CompanyType = ct
	}
	if cmd.Flags().Changed("unlisted") {
		listed := !analyzeUnlisted
		req.Listed = &listed
	}
	return req, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	template, err := analysisTemplate(cmd)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(analyzeFormat)
	if err != nil {
		return err
	}
	if len(args) > 1 && analyzeOut == "" {
		return fmt.Errorf("--out directory is required for several symbols")
	}
	if format == report.FormatPDF && analyzeOut == "" {
		return fmt.Errorf("--out is required for PDF output")
	}

	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	symbols := make([]string, len(args))
	for i, a := range args {
		symbols[i] = strings.ToUpper(a)
	}

	outcomes := application.AnalyzeAll(cmd.Context(), symbols, template)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", o.Symbol, o.Err)
			continue
		}

		out, err := application.Reports.Render(o.Report, format)
		if err != nil {
			return err
		}
		if err := writeReport(cmd, o.Symbol, format, out, len(symbols) > 1); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed", failed, len(symbols))
	}
	return nil
}

func writeReport(cmd *cobra.Command, symbol string, format report.Format, out []byte, toDir bool) error {
	if analyzeOut == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}

	path := analyzeOut
	if toDir {
		if err := os.MkdirAll(analyzeOut, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path = filepath.Join(analyzeOut, strings.ToLower(symbol)+"-forensic."+extension(format))
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Info().Str("symbol", symbol).Str("path", path).Msg("Report written")
	return nil
}

func extension(f report.Format) string {
	switch f {
	case report.FormatJSON:
		return "json"
	case report.FormatPDF:
		return "pdf"
	}
	return "md"
}
