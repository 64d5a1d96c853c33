package common

import (
	"strings"
)

// Ticker is an exchange-qualified listing, e.g. "NSE:RELIANCE" or "BSE:500325".
type Ticker struct {
	Exchange string
	Code     string
	Raw      string
}

// ExchangeToSuffix maps exchange codes to EODHD API suffixes.
var ExchangeToSuffix = map[string]string{
	"NSE": ".NSE",
	"BSE": ".BSE",
}

// ParseTicker parses "EXCHANGE:CODE", "EXCHANGE.CODE" or a bare code.
// A bare numeric code is a BSE scrip code. Other bare codes take
// defaultExchange.
func ParseTicker(ticker, defaultExchange string) Ticker {
	raw := ticker
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Ticker{}
	}

	if idx := strings.IndexAny(ticker, ":."); idx > 0 {
		exchange := strings.ToUpper(ticker[:idx])
		if _, ok := ExchangeToSuffix[exchange]; ok || ticker[idx] == ':' {
			return Ticker{Exchange: exchange, Code: strings.ToUpper(ticker[idx+1:]), Raw: raw}
		}
	}

	code := strings.ToUpper(ticker)
	exchange := strings.ToUpper(defaultExchange)
	if isScripCode(code) {
		exchange = "BSE"
	}
	return Ticker{Exchange: exchange, Code: code, Raw: raw}
}

// String returns the exchange-qualified form.
func (t Ticker) String() string {
	if t.Exchange == "" || t.Code == "" {
		return t.Code
	}
	return t.Exchange + ":" + t.Code
}

// EODHDSymbol returns the EODHD symbol, e.g. "NSE:RELIANCE" -> "RELIANCE.NSE".
func (t Ticker) EODHDSymbol() string {
	if t.Code == "" {
		return ""
	}
	suffix, ok := ExchangeToSuffix[t.Exchange]
	if !ok {
		suffix = "." + t.Exchange
	}
	return t.Code + suffix
}

func isScripCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
