package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/filings"
	"github.com/ternarybob/scrutor/internal/storage/badger"
)

type fakeIngestor struct {
	last filings.Request
	err  error
}

func (f *fakeIngestor) Ingest(_ context.Context, req filings.Request) (*filings.Result, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &filings.Result{Key: "ACME|2025|ANNUAL|consolidated", Source: req.Source, Created: true}, nil
}

func newStatementStore(t *testing.T) interfaces.StatementStorage {
	t.Helper()
	manager, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager.StatementStorage()
}

func seedStatement(t *testing.T, store interfaces.StatementStorage, symbol string, fy int, q models.Quarter, st models.StatementType) {
	t.Helper()
	end := time.Date(fy, 3, 31, 0, 0, 0, 0, time.UTC)
	if q != models.QuarterAnnual {
		end = time.Date(fy-1, 6, 30, 0, 0, 0, 0, time.UTC)
	}
	_, err := store.UpsertStatement(context.Background(), &models.NormalizedStatement{
		Period: models.FilingPeriod{
			Symbol:        symbol,
			FiscalYear:    fy,
			Quarter:       q,
			StatementType: st,
			EndDate:       end,
			IsAnnual:      q == models.QuarterAnnual,
		},
		Currency: "INR",
		Fields:   models.Fields{models.Revenue: 1e9},
	})
	require.NoError(t, err)
}

func TestFilingsHandler_Ingest(t *testing.T) {
	ingestor := &fakeIngestor{}
	h := NewFilingsHandler(ingestor, newStatementStore(t), arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/filings?symbol=acme&statement_type=Consolidated&source=acme.xml", strings.NewReader("<xbrl/>"))
	rec := httptest.NewRecorder()
	h.IngestHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ACME", ingestor.last.Symbol)
	assert.Equal(t, models.StatementConsolidated, ingestor.last.StatementType)
	assert.Equal(t, "acme.xml", ingestor.last.Source)
	assert.Equal(t, "<xbrl/>", string(ingestor.last.Data))

	var res filings.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "ACME|2025|ANNUAL|consolidated", res.Key)
}

func TestFilingsHandler_IngestErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		err    error
		want   int
	}{
		{"empty body", "/api/filings", "", nil, http.StatusBadRequest},
		{"bad statement type", "/api/filings?statement_type=both", "<xbrl/>", nil, http.StatusBadRequest},
		{"unparseable filing", "/api/filings", "garbage", &models.ParseError{Source: "upload", Err: assert.AnError}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewFilingsHandler(&fakeIngestor{err: tt.err}, newStatementStore(t), arbor.NewLogger())
			rec := httptest.NewRecorder()
			h.IngestHandler(rec, httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestFilingsHandler_ListStatements(t *testing.T) {
	store := newStatementStore(t)
	seedStatement(t, store, "ACME", 2025, models.QuarterAnnual, models.StatementConsolidated)
	seedStatement(t, store, "ACME", 2024, models.QuarterAnnual, models.StatementConsolidated)
	seedStatement(t, store, "ACME", 2025, models.Q1, models.StatementConsolidated)
	seedStatement(t, store, "ACME", 2025, models.QuarterAnnual, models.StatementStandalone)
	seedStatement(t, store, "WIDGET", 2025, models.QuarterAnnual, models.StatementStandalone)
	h := NewFilingsHandler(&fakeIngestor{}, store, arbor.NewLogger())

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"annual consolidated", "/api/statements?symbol=acme&type=consolidated&annual=true", []string{
			"ACME|2025|ANNUAL|consolidated", "ACME|2024|ANNUAL|consolidated",
		}},
		{"limit", "/api/statements?symbol=ACME&type=consolidated&annual=true&limit=1", []string{
			"ACME|2025|ANNUAL|consolidated",
		}},
		{"quarterly", "/api/statements?symbol=ACME&annual=false", []string{
			"ACME|2025|Q1|consolidated",
		}},
		{"unknown symbol", "/api/statements?symbol=NOPE", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ListStatementsHandler(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var got []*models.NormalizedStatement
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			keys := make([]string, 0, len(got))
			for _, s := range got {
				keys = append(keys, s.Period.Key())
			}
			assert.Equal(t, tt.want, keys)
		})
	}

	t.Run("symbol required", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListStatementsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/statements", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("symbols", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListSymbolsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/symbols", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var got []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, []string{"ACME", "WIDGET"}, got)
	})
}
