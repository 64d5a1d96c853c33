package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetEOD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/RELIANCE.NSE", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("from"))
		w.Write([]byte(`[{"date":"2025-01-02","open":1,"high":2,"low":0.5,"close":1.5,"adjusted_close":1.5,"volume":100}]`))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithRateLimit(time.Millisecond))
	bars, err := c.GetEOD(context.Background(), "RELIANCE.NSE",
		WithDateRange(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 1.5, bars[0].Close)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "api error",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
				assert.Equal(t, "/fundamentals/TCS.NSE", apiErr.Endpoint)
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rlErr *RateLimitError
				require.True(t, errors.As(err, &rlErr))
				assert.Equal(t, time.Minute, rlErr.RetryAfter)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("denied"))
			}))
			defer srv.Close()

			_, err := NewClient("k", WithBaseURL(srv.URL)).GetFundamentals(context.Background(), "TCS.NSE")
			tt.check(t, err)
		})
	}
}

func TestClient_LatestCloseSkipsEmptyBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"date":"2025-01-03","close":0},{"date":"2025-01-02","close":99}]`))
	}))
	defer srv.Close()

	bar, err := NewClient("k", WithBaseURL(srv.URL)).LatestClose(context.Background(), "TCS.NSE", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 99.0, bar.Close)
}

func TestClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient("k", WithBaseURL("http://127.0.0.1:1")).GetFundamentals(ctx, "TCS.NSE")
	assert.Error(t, err)
}
