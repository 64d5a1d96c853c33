package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/metrics"
)

// formatStatements formats statements as a markdown table, figures in crore
func formatStatements(symbol string, stmts []*models.NormalizedStatement) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Statements for %s (%d)\n\n", symbol, len(stmts)))

	if len(stmts) == 0 {
		sb.WriteString("No statements found.\n")
		return sb.String()
	}

	sb.WriteString("| Period | Type | End | Revenue | Net profit | Operating CF | Assets | Source |\n")
	sb.WriteString("|--------|------|-----|---------|------------|--------------|--------|--------|\n")
	for _, s := range stmts {
		sb.WriteString(fmt.Sprintf("| FY%d %s | %s | %s | %s | %s | %s | %s | %s |\n",
			s.Period.FiscalYear, s.Period.Quarter, s.Period.StatementType,
			s.Period.EndDate.Format("2006-01-02"),
			crore(s, models.Revenue), crore(s, models.NetProfit),
			crore(s, models.OperatingCashFlow), crore(s, models.Assets),
			sourceOf(s)))
	}
	sb.WriteString("\nFigures in ₹ crore.\n")
	return sb.String()
}

func crore(s *models.NormalizedStatement, f models.Field) string {
	v, ok := s.Value(f)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f", v/metrics.Crore)
}

func sourceOf(s *models.NormalizedStatement) string {
	if s.Synthesized {
		return "synthesized"
	}
	if s.SourceDocument == "" {
		return "-"
	}
	return s.SourceDocument
}
