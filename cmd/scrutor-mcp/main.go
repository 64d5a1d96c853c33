package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/scrutor/internal/app"
	"github.com/ternarybob/scrutor/internal/common"
)

func main() {
	configPath := os.Getenv("SCRUTOR_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("scrutor.toml"); err == nil {
			configPath = "scrutor.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP stream, so log to file only
	config.Logging.Output = []string{"file"}
	config.Scheduler.Enabled = false
	logger := common.InitLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"scrutor",
		common.GetVersionInfo().Version,
		server.WithToolCapabilities(true),
	)

	statements := application.StorageManager.StatementStorage()
	mcpServer.AddTool(createAnalyzeSymbolTool(), handleAnalyzeSymbol(application.Analyzer, logger))
	mcpServer.AddTool(createGetReportTool(), handleGetReport(application.Analyzer, logger))
	mcpServer.AddTool(createListStatementsTool(), handleListStatements(statements, logger))
	mcpServer.AddTool(createListSymbolsTool(), handleListSymbols(statements, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
		os.Exit(1)
	}
}
