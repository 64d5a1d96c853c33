package interfaces

import (
	"context"

	"github.com/ternarybob/scrutor/internal/models"
)

// MarketDataProvider supplies price and share data for valuation ratios and
// the Altman market-value term. Failures are returned as
// *models.DataSourceError.
type MarketDataProvider interface {
	Name() string
	Snapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
}
