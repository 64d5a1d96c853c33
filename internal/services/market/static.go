package market

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/scrutor/internal/models"
)

// StaticProvider serves prices and share counts from configuration.
type StaticProvider struct {
	prices   map[string]float64
	shares   map[string]float64
	currency string
}

// NewStaticProvider keys both maps by upper-cased symbol.
func NewStaticProvider(prices, shares map[string]float64, currency string) *StaticProvider {
	p := &StaticProvider{
		prices:   make(map[string]float64, len(prices)),
		shares:   make(map[string]float64, len(shares)),
		currency: currency,
	}
	for k, v := range prices {
		p.prices[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	for k, v := range shares {
		p.shares[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return p
}

func (p *StaticProvider) Name() string { return "static" }

// Snapshot returns the configured price. Shares are optional; without them
// the snapshot carries no market cap and ratios fall back to reported shares.
func (p *StaticProvider) Snapshot(_ context.Context, symbol string) (*models.MarketSnapshot, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	price, ok := p.prices[key]
	if !ok || price <= 0 {
		return nil, &models.DataSourceError{Provider: p.Name(), Symbol: key, Err: ErrNoMarketData}
	}
	snap := &models.MarketSnapshot{
		Price:             price,
		SharesOutstanding: p.shares[key],
		Currency:          p.currency,
		AsOf:              time.Now().UTC(),
		Source:            p.Name(),
	}
	if snap.SharesOutstanding > 0 {
		snap.MarketCap = price * snap.SharesOutstanding
	}
	return snap, nil
}
