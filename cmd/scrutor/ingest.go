package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/filings"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|dir>...",
	Short: "Extract and store statements from XBRL filings",
	Long: `Parses XBRL (.xml, .xbrl) and inline XBRL (.html, .htm, .xhtml) filings,
maps them to normalized statements and upserts them by period. Directories are
walked recursively. --symbol and --type apply to single files only.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var (
	ingestSymbol string
	ingestType   string
)

func init() {
	ingestCmd.Flags().StringVar(&ingestSymbol, "symbol", "", "Symbol override for filings without metadata")
	ingestCmd.Flags().StringVar(&ingestType, "type", "", "Statement type override (standalone|consolidated)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	var override models.StatementType
	if ingestType != "" {
		st, ok := models.ParseStatementType(ingestType)
		if !ok {
			return fmt.Errorf("invalid --type %q", ingestType)
		}
		override = st
	}

	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	summary := &filings.Summary{}
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			summary.Failures = append(summary.Failures, filings.FileError{Path: path, Error: err.Error()})
			continue
		}

		if info.IsDir() {
			s, err := application.Ingestor.IngestDir(ctx, path)
			if err != nil {
				return err
			}
			summary.Results = append(summary.Results, s.Results...)
			summary.Failures = append(summary.Failures, s.Failures...)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			summary.Failures = append(summary.Failures, filings.FileError{Path: path, Error: err.Error()})
			continue
		}
		res, err := application.Ingestor.Ingest(ctx, filings.Request{
			Data:          data,
			Source:        filepath.Base(path),
			Symbol:        strings.ToUpper(ingestSymbol),
			StatementType: override,
		})
		if err != nil {
			summary.Failures = append(summary.Failures, filings.FileError{Path: path, Error: err.Error()})
			continue
		}
		summary.Results = append(summary.Results, res)
	}

	printIngestSummary(cmd, summary)
	if len(summary.Results) == 0 && len(summary.Failures) > 0 {
		return fmt.Errorf("no filings ingested")
	}
	return nil
}

func printIngestSummary(cmd *cobra.Command, s *filings.Summary) {
	out := cmd.OutOrStdout()
	w := newTable(out)
	fmt.Fprintln(w, "KEY\tSTATUS\tDIALECT\tFIELDS\tQUALITY\tVALID\tSOURCE")
	for _, r := range s.Results {
		status := "updated"
		if r.Created {
			status = "created"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f\t%t\t%s\n",
			r.Key, status, r.Dialect, r.Fields, r.Validation.QualityScore, r.Validation.Valid, r.Source)
	}
	w.Flush()

	for _, f := range s.Failures {
		fmt.Fprintf(out, "FAILED %s: %s\n", f.Path, f.Error)
	}
	fmt.Fprintf(out, "\n%d ingested, %d failed\n", len(s.Results), len(s.Failures))
}
