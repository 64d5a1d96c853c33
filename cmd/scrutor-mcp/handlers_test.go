package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/analysis"
	"github.com/ternarybob/scrutor/internal/storage/badger"
)

type fakeSource struct {
	cached map[models.StatementType]*models.ForensicReport
	last   analysis.Request
}

func (f *fakeSource) Analyze(_ context.Context, req analysis.Request) (*models.ForensicReport, error) {
	f.last = req
	return &models.ForensicReport{RunID: "run_new", Symbol: req.Symbol, StatementType: models.StatementConsolidated}, nil
}

func (f *fakeSource) Report(_ context.Context, _ string, st models.StatementType) (*models.ForensicReport, error) {
	if r, ok := f.cached[st]; ok {
		return r, nil
	}
	return nil, models.ErrReportNotFound
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (*mcp.CallToolResult, string) {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	result, err := h(context.Background(), request)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	return result, result.Content[0].(mcp.TextContent).Text
}

func TestHandleAnalyzeSymbol(t *testing.T) {
	src := &fakeSource{}
	h := handleAnalyzeSymbol(src, arbor.NewLogger())

	result, text := call(t, h, map[string]interface{}{
		"symbol":         "infy",
		"years":          float64(3),
		"statement_type": "standalone",
		"company_type":   "service",
	})
	assert.False(t, result.IsError)
	assert.Contains(t, text, "# Forensic report: INFY")
	assert.Equal(t, "INFY", src.last.Symbol)
	assert.Equal(t, 3, src.last.Years)
	assert.Equal(t, models.StatementStandalone, src.last.StatementType)
	assert.Equal(t, models.CompanyService, src.last.CompanyType)

	result, text = call(t, h, map[string]interface{}{"symbol": "INFY", "format": "json"})
	assert.False(t, result.IsError)
	var rep models.ForensicReport
	require.NoError(t, json.Unmarshal([]byte(text), &rep))
	assert.Equal(t, "run_new", rep.RunID)

	for name, args := range map[string]map[string]interface{}{
		"missing symbol":   {},
		"bad type":         {"symbol": "INFY", "statement_type": "both"},
		"bad company type": {"symbol": "INFY", "company_type": "bank"},
		"bad format":       {"symbol": "INFY", "format": "pdf"},
	} {
		result, _ := call(t, h, args)
		assert.True(t, result.IsError, name)
	}
}

func TestHandleGetReport(t *testing.T) {
	src := &fakeSource{cached: map[models.StatementType]*models.ForensicReport{
		models.StatementStandalone: {RunID: "run_sa", Symbol: "INFY", StatementType: models.StatementStandalone},
	}}
	h := handleGetReport(src, arbor.NewLogger())

	result, text := call(t, h, map[string]interface{}{"symbol": "INFY", "format": "json"})
	require.False(t, result.IsError)
	assert.Contains(t, text, "run_sa", "falls back to standalone")

	result, text = call(t, h, map[string]interface{}{"symbol": "INFY", "statement_type": "consolidated"})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "analyze_symbol")
}

func TestHandleListStatements(t *testing.T) {
	manager, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	defer manager.Close()
	store := manager.StatementStorage()

	_, err = store.UpsertStatement(context.Background(), &models.NormalizedStatement{
		Period: models.FilingPeriod{
			Symbol:        "INFY",
			FiscalYear:    2025,
			Quarter:       models.QuarterAnnual,
			StatementType: models.StatementConsolidated,
			EndDate:       time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			IsAnnual:      true,
		},
		Fields:         models.Fields{models.Revenue: 1.5e12},
		SourceDocument: "infy-fy25.xml",
	})
	require.NoError(t, err)

	result, text := call(t, handleListStatements(store, arbor.NewLogger()), map[string]interface{}{"symbol": "infy", "annual_only": true})
	require.False(t, result.IsError)
	assert.Contains(t, text, "## Statements for INFY (1)")
	assert.Contains(t, text, "| FY2025 ANNUAL | consolidated | 2025-03-31 | 150000.00 | - | - | - | infy-fy25.xml |")

	result, text = call(t, handleListSymbols(store, arbor.NewLogger()), map[string]interface{}{})
	require.False(t, result.IsError)
	assert.Equal(t, "INFY", text)
}
