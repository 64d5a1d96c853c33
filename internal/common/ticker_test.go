package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTicker(t *testing.T) {
	tests := []struct {
		input        string
		wantExchange string
		wantCode     string
		wantString   string
		wantEODHD    string
	}{
		{"NSE:RELIANCE", "NSE", "RELIANCE", "NSE:RELIANCE", "RELIANCE.NSE"},
		{"BSE:500325", "BSE", "500325", "BSE:500325", "500325.BSE"},
		{"nse.tcs", "NSE", "TCS", "NSE:TCS", "TCS.NSE"},
		{"INFY", "NSE", "INFY", "NSE:INFY", "INFY.NSE"},
		{"  infy  ", "NSE", "INFY", "NSE:INFY", "INFY.NSE"},
		{"532540", "BSE", "532540", "BSE:532540", "532540.BSE"},
		{"M&M", "NSE", "M&M", "NSE:M&M", "M&M.NSE"},
		{"BAJAJ-AUTO", "NSE", "BAJAJ-AUTO", "NSE:BAJAJ-AUTO", "BAJAJ-AUTO.NSE"},
		{"", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseTicker(tt.input, "nse")
			assert.Equal(t, tt.wantExchange, got.Exchange)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantString, got.String())
			assert.Equal(t, tt.wantEODHD, got.EODHDSymbol())
		})
	}
}

func TestParseTicker_UnknownExchangePrefix(t *testing.T) {
	got := ParseTicker("LSE:VOD", "NSE")
	assert.Equal(t, "LSE", got.Exchange)
	assert.Equal(t, "VOD.LSE", got.EODHDSymbol())

	// A dot only separates a known exchange.
	got = ParseTicker("ABC.XYZ", "NSE")
	assert.Equal(t, "NSE", got.Exchange)
	assert.Equal(t, "ABC.XYZ", got.Code)
}
