package market

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/eodhd"
	"github.com/ternarybob/scrutor/internal/models"
)

// priceLookback covers weekends and exchange holidays.
const priceLookback = 10 * 24 * time.Hour

// EODHDProvider combines the latest daily close with the share count from
// the fundamentals endpoint.
type EODHDProvider struct {
	client   *eodhd.Client
	exchange string
	logger   arbor.ILogger
}

func NewEODHDProvider(client *eodhd.Client, exchange string, logger arbor.ILogger) *EODHDProvider {
	if exchange == "" {
		exchange = "NSE"
	}
	return &EODHDProvider{client: client, exchange: exchange, logger: logger}
}

func (p *EODHDProvider) Name() string { return "eodhd" }

// Snapshot fails only when no price is available. A fundamentals failure
// leaves shares and market cap empty.
func (p *EODHDProvider) Snapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	ticker := common.ParseTicker(symbol, p.exchange)
	code := ticker.EODHDSymbol()

	bar, err := p.client.LatestClose(ctx, code, priceLookback)
	if err != nil {
		return nil, &models.DataSourceError{Provider: p.Name(), Symbol: ticker.String(), Err: err}
	}

	snap := &models.MarketSnapshot{
		Price:    bar.Close,
		Currency: "INR",
		AsOf:     bar.Date,
		Source:   p.Name(),
	}

	fund, err := p.client.GetFundamentals(ctx, code)
	if err != nil {
		p.logger.Warn().Err(err).Str("symbol", code).Msg("Fundamentals unavailable, snapshot has price only")
		return snap, nil
	}
	if fund.General != nil && fund.General.CurrencyCode != "" {
		snap.Currency = strings.ToUpper(fund.General.CurrencyCode)
	}
	if fund.SharesStats != nil && fund.SharesStats.SharesOutstanding > 0 {
		snap.SharesOutstanding = fund.SharesStats.SharesOutstanding
		snap.MarketCap = snap.Price * snap.SharesOutstanding
	}
	if snap.MarketCap == 0 && fund.Highlights != nil {
		snap.MarketCap = fund.Highlights.MarketCapitalization
	}

	p.logger.Debug().
		Str("symbol", code).
		Float64("price", snap.Price).
		Float64("market_cap", snap.MarketCap).
		Msg("Market snapshot fetched")
	return snap, nil
}
