package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAnalyzeSymbolTool returns the analyze_symbol tool definition
func createAnalyzeSymbolTool() mcp.Tool {
	return mcp.NewTool("analyze_symbol",
		mcp.WithDescription("Run the Beneish, Altman, Piotroski and J-Score forensic models for a listed company and return the report"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Exchange symbol, e.g. INFY"),
		),
		mcp.WithNumber("years",
			mcp.Description("Annual statements to analyze (default from config, usually 5)"),
		),
		mcp.WithString("statement_type",
			mcp.Description("standalone or consolidated (default: auto-detect)"),
		),
		mcp.WithString("company_type",
			mcp.Description("Altman variant: manufacturing, service or emerging"),
		),
		mcp.WithString("format",
			mcp.Description("md (default) or json"),
		),
	)
}

// createGetReportTool returns the get_report tool definition
func createGetReportTool() mcp.Tool {
	return mcp.NewTool("get_report",
		mcp.WithDescription("Fetch the last cached forensic report without re-running the analysis"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Exchange symbol"),
		),
		mcp.WithString("statement_type",
			mcp.Description("standalone or consolidated (default: consolidated, then standalone)"),
		),
		mcp.WithString("format",
			mcp.Description("md (default) or json"),
		),
	)
}

// createListStatementsTool returns the list_statements tool definition
func createListStatementsTool() mcp.Tool {
	return mcp.NewTool("list_statements",
		mcp.WithDescription("List stored financial statements of a symbol, newest first, with headline figures in crore"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Exchange symbol"),
		),
		mcp.WithString("statement_type",
			mcp.Description("Filter: standalone or consolidated"),
		),
		mcp.WithBoolean("annual_only",
			mcp.Description("Only annual statements"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max statements (default: 20)"),
		),
	)
}

// createListSymbolsTool returns the list_symbols tool definition
func createListSymbolsTool() mcp.Tool {
	return mcp.NewTool("list_symbols",
		mcp.WithDescription("List symbols with stored statements"),
	)
}
