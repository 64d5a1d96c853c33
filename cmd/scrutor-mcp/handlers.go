package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/analysis"
	"github.com/ternarybob/scrutor/internal/services/report"
)

// reportSource runs or fetches forensic reports
type reportSource interface {
	Analyze(ctx context.Context, req analysis.Request) (*models.ForensicReport, error)
	Report(ctx context.Context, symbol string, statementType models.StatementType) (*models.ForensicReport, error)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

func requireSymbol(request mcp.CallToolRequest) (string, error) {
	symbol, err := request.RequireString("symbol")
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err != nil || symbol == "" {
		return "", fmt.Errorf("symbol parameter is required")
	}
	return symbol, nil
}

func optionalStatementType(request mcp.CallToolRequest) (models.StatementType, error) {
	s := request.GetString("statement_type", "")
	if s == "" {
		return "", nil
	}
	st, ok := models.ParseStatementType(s)
	if !ok {
		return "", fmt.Errorf("statement_type must be standalone or consolidated")
	}
	return st, nil
}

// renderReport renders md or json; PDF is not useful over stdio.
func renderReport(r *models.ForensicReport, format string) (*mcp.CallToolResult, error) {
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		return textResult(report.Markdown(r)), nil
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return textResult(string(data)), nil
	}
	return errorResult("format must be md or json"), nil
}

// handleAnalyzeSymbol implements the analyze_symbol tool
func handleAnalyzeSymbol(analyzer reportSource, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := requireSymbol(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		st, err := optionalStatementType(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		req := analysis.Request{
			Symbol:        symbol,
			Years:         request.GetInt("years", 0),
			StatementType: st,
		}
		if s := request.GetString("company_type", ""); s != "" {
			ct, ok := models.ParseCompanyType(s)
			if !ok {
				return errorResult("Error: company_type must be manufacturing, service or emerging"), nil
			}
			req.CompanyType = ct
		}

		rep, err := analyzer.Analyze(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Analysis failed")
			return errorResult(fmt.Sprintf("Analysis failed: %v", err)), nil
		}
		return renderReport(rep, request.GetString("format", "md"))
	}
}

// handleGetReport implements the get_report tool
func handleGetReport(analyzer reportSource, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := requireSymbol(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		st, err := optionalStatementType(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		types := []models.StatementType{st}
		if st == "" {
			types = []models.StatementType{models.StatementConsolidated, models.StatementStandalone}
		}
		for _, t := range types {
			rep, err := analyzer.Report(ctx, symbol, t)
			if errors.Is(err, models.ErrReportNotFound) {
				continue
			}
			if err != nil {
				logger.Error().Err(err).Str("symbol", symbol).Msg("Failed to load report")
				return errorResult(fmt.Sprintf("Failed to load report: %v", err)), nil
			}
			return renderReport(rep, request.GetString("format", "md"))
		}
		return errorResult(fmt.Sprintf("No cached report for %s. Run analyze_symbol first.", symbol)), nil
	}
}

// handleListStatements implements the list_statements tool
func handleListStatements(statements interfaces.StatementStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := requireSymbol(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		st, err := optionalStatementType(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		limit := request.GetInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		stmts, err := statements.ListStatements(ctx, interfaces.StatementFilter{
			Symbol:        symbol,
			StatementType: st,
			AnnualOnly:    request.GetBool("annual_only", false),
			Limit:         limit,
		})
		if err != nil {
			logger.Error().Err(err).Str("symbol", symbol).Msg("Failed to list statements")
			return errorResult(fmt.Sprintf("Failed to list statements: %v", err)), nil
		}
		return textResult(formatStatements(symbol, stmts)), nil
	}
}

// handleListSymbols implements the list_symbols tool
func handleListSymbols(statements interfaces.StatementStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbols, err := statements.ListSymbols(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to list symbols")
			return errorResult(fmt.Sprintf("Failed to list symbols: %v", err)), nil
		}
		if len(symbols) == 0 {
			return textResult("No statements stored yet."), nil
		}
		return textResult(strings.Join(symbols, "\n")), nil
	}
}
