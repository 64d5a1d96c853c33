package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/app"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/handlers"
	"github.com/ternarybob/scrutor/internal/models"
)

func annualFiling(fy int, revenue int64) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
  xmlns:in-capmkt="http://www.sebi.gov.in/xbrl/2025-03-31/in-capmkt">
  <xbrli:context id="D">
    <xbrli:entity><xbrli:identifier scheme="http://www.nseindia.com">ACME</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:startDate>%d-04-01</xbrli:startDate><xbrli:endDate>%d-03-31</xbrli:endDate></xbrli:period>
  </xbrli:context>
  <xbrli:context id="I">
    <xbrli:entity><xbrli:identifier scheme="http://www.nseindia.com">ACME</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>%d-03-31</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:unit id="INR"><xbrli:measure>iso4217:INR</xbrli:measure></xbrli:unit>
  <in-capmkt:Symbol contextRef="D">ACME</in-capmkt:Symbol>
  <in-capmkt:ReportingQuarter contextRef="D">Audited</in-capmkt:ReportingQuarter>
  <in-capmkt:NatureOfReportStandaloneConsolidated contextRef="D">Consolidated</in-capmkt:NatureOfReportStandaloneConsolidated>
  <in-capmkt:RevenueFromOperations contextRef="D" unitRef="INR" decimals="0">%d</in-capmkt:RevenueFromOperations>
  <in-capmkt:ProfitLossForPeriod contextRef="D" unitRef="INR" decimals="0">%d</in-capmkt:ProfitLossForPeriod>
  <in-capmkt:Assets contextRef="I" unitRef="INR" decimals="0">5000000000</in-capmkt:Assets>
</xbrli:xbrl>`, fy-1, fy, fy, revenue, revenue/10)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = t.TempDir()

	application, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	srv := httptest.NewServer(New(application).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_EndToEnd(t *testing.T) {
	srv := newTestServer(t)

	for fy, revenue := range map[int]int64{2024: 900_000_000, 2025: 1_000_000_000} {
		resp, err := http.Post(srv.URL+"/api/filings?source=acme.xml", "application/xml", strings.NewReader(annualFiling(fy, revenue)))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode, "FY%d", fy)
	}

	resp, err := http.Get(srv.URL + "/api/statements?symbol=acme&type=consolidated")
	require.NoError(t, err)
	var stmts []*models.NormalizedStatement
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stmts))
	resp.Body.Close()
	require.Len(t, stmts, 2)
	assert.Equal(t, 2025, stmts[0].Period.FiscalYear)

	resp, err = http.Get(srv.URL + "/api/forensics/ACME")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rep models.ForensicReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	resp.Body.Close()
	assert.Equal(t, "ACME", rep.Symbol)
	assert.Equal(t, models.StatementConsolidated, rep.StatementType)
	assert.True(t, strings.HasPrefix(rep.RunID, "run_"))

	// The cached report is served for an explicit type
	resp, err = http.Get(srv.URL + "/api/forensics/ACME?type=consolidated")
	require.NoError(t, err)
	var cached models.ForensicReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cached))
	resp.Body.Close()
	assert.Equal(t, rep.RunID, cached.RunID)

	resp, err = http.Get(srv.URL + "/api/forensics/ACME/pdf?type=consolidated")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	resp, err = http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	var status handlers.AppStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, 1, status.Symbols)
	assert.Len(t, status.Reports, 1)
}

func TestServer_Routing(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
		{"unknown symbol", http.MethodGet, "/api/forensics/NOPE", http.StatusNotFound},
		{"wrong method on filings", http.MethodGet, "/api/filings", http.StatusMethodNotAllowed},
		{"wrong method on forensics", http.MethodDelete, "/api/forensics/ACME", http.StatusMethodNotAllowed},
		{"preflight", http.MethodOptions, "/api/filings", http.StatusOK},
		{"health", http.MethodGet, "/api/health", http.StatusOK},
		{"version", http.MethodGet, "/api/version", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}
