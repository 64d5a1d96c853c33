package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/metrics"
)

var statementsCmd = &cobra.Command{
	Use:   "statements [symbol]",
	Short: "List stored statements, or stored symbols when no symbol is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatements,
}

var (
	statementsType   string
	statementsAnnual bool
)

func init() {
	statementsCmd.Flags().StringVar(&statementsType, "type", "", "Statement type filter (standalone|consolidated)")
	statementsCmd.Flags().BoolVar(&statementsAnnual, "annual", false, "Annual statements only")
}

func runStatements(cmd *cobra.Command, args []string) error {
	application, err := openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	store := application.StorageManager.StatementStorage()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		symbols, err := store.ListSymbols(cmd.Context())
		if err != nil {
			return err
		}
		for _, s := range symbols {
			fmt.Fprintln(out, s)
		}
		return nil
	}

	filter := interfaces.StatementFilter{Symbol: strings.ToUpper(args[0]), AnnualOnly: statementsAnnual}
	if statementsType != "" {
		st, ok := models.ParseStatementType(statementsType)
		if !ok {
			return fmt.Errorf("invalid --type %q", statementsType)
		}
		filter.StatementType = st
	}

	stmts, err := store.ListStatements(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if len(stmts) == 0 {
		return fmt.Errorf("no statements stored for %s: %w", filter.Symbol, models.ErrStatementNotFound)
	}

	w := newTable(out)
	fmt.Fprintln(w, "KEY\tEND\tDIALECT\tREVENUE (CR)\tNET PROFIT (CR)\tASSETS (CR)\tFIELDS\tSOURCE")
	for _, s := range stmts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			s.Key(), s.Period.EndDate.Format("2006-01-02"), s.Dialect,
			crore(s, models.Revenue), crore(s, models.NetProfit), crore(s, models.Assets),
			len(s.Fields), s.SourceDocument)
	}
	return w.Flush()
}

func crore(s *models.NormalizedStatement, f models.Field) string {
	v, ok := s.Value(f)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f", v/metrics.Crore)
}
