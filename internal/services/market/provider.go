// Package market supplies the price and share-count snapshots used by
// valuation ratios and the market-value term of the Altman Z-Score.
package market

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/eodhd"
	"github.com/ternarybob/scrutor/internal/interfaces"
)

// ErrNoMarketData is returned when a provider has nothing for a symbol.
var ErrNoMarketData = errors.New("no market data")

// NewProvider builds the provider selected by [market] provider. It returns
// nil for "none"; callers treat a nil provider as absent market data.
func NewProvider(cfg *common.MarketConfig, logger arbor.ILogger) (interfaces.MarketDataProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case common.MarketNone, "":
		return nil, nil
	case common.MarketStatic:
		return NewStaticProvider(cfg.Prices, cfg.Shares, "INR"), nil
	case common.MarketEODHD:
		if cfg.EODHD.APIKey == "" {
			return nil, errors.New("eodhd market provider requires an api key")
		}
		opts := []eodhd.ClientOption{
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(common.Duration(cfg.EODHD.RateLimit, eodhd.DefaultInterval)),
			eodhd.WithTimeout(common.Duration(cfg.EODHD.Timeout, eodhd.DefaultTimeout)),
		}
		if cfg.EODHD.BaseURL != "" {
			opts = append(opts, eodhd.WithBaseURL(cfg.EODHD.BaseURL))
		}
		return NewEODHDProvider(eodhd.NewClient(cfg.EODHD.APIKey, opts...), cfg.Exchange, logger), nil
	default:
		return nil, fmt.Errorf("unsupported market provider: %s", cfg.Provider)
	}
}
