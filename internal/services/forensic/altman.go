package forensic

import (
	"fmt"

	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/sector"
	"github.com/ternarybob/scrutor/internal/services/metrics"
)

// AltmanOptions selects the Altman coefficient set.
type AltmanOptions struct {
	CompanyType models.CompanyType
	Listed      bool
}

// Altman variants.
const (
	VariantZ        = "Z"      // listed manufacturing
	VariantZPrime   = "Z'"     // unlisted manufacturing
	VariantZDouble  = "Z''"    // non-manufacturing / service
	VariantEmerging = "Z''-EM" // emerging market
)

type altmanVariant struct {
	name                       string
	intercept                  float64
	x1, x2, x3, x4, x5         float64
	distress, safe             float64
	marketValue, usesSalesToTA bool
}

var altmanVariants = map[string]altmanVariant{
	VariantZ:        {name: VariantZ, x1: 1.2, x2: 1.4, x3: 3.3, x4: 0.6, x5: 1.0, distress: 1.81, safe: 2.99, marketValue: true, usesSalesToTA: true},
	VariantZPrime:   {name: VariantZPrime, x1: 0.717, x2: 0.847, x3: 3.107, x4: 0.420, x5: 0.998, distress: 1.23, safe: 2.90, usesSalesToTA: true},
	VariantZDouble:  {name: VariantZDouble, x1: 6.56, x2: 3.26, x3: 6.72, x4: 1.05, distress: 1.10, safe: 2.60},
	VariantEmerging: {name: VariantEmerging, intercept: 3.25, x1: 6.56, x2: 3.26, x3: 6.72, x4: 1.05, distress: 4.35, safe: 5.85},
}

// CalculateAltman computes the Altman Z-Score for one fiscal year.
//
// Components:
// - X1 = working capital / total assets
// - X2 = reserves (retained earnings) / total assets
// - X3 = EBIT / total assets, EBIT = profit before tax + finance costs
// - X4 = market cap (Z) or book equity (other variants) / total liabilities
// - X5 = revenue / total assets (manufacturing variants only)
//
// Banks are never scored. A listed manufacturer without market data falls
// back to Z' with a note.
func CalculateAltman(s *models.NormalizedStatement, opts AltmanOptions) models.ForensicScoreResult {
	if s == nil {
		return models.InsufficientDataResult(models.ModelAltman, "no statement")
	}
	if sector.StatementIsBanking(s) || s.IsBanking {
		return models.NotApplicableResult(models.ModelAltman, "not applicable to banks")
	}

	f := s.Fields
	variant, note := selectAltmanVariant(s, opts)

	required := []models.Field{models.Assets, models.Liabilities, models.CurrentAssets, models.CurrentLiabilities, models.Reserves, models.ProfitBeforeTax}
	if variant.usesSalesToTA {
		required = append(required, models.Revenue)
	}
	if !variant.marketValue {
		required = append(required, models.Equity)
	}
	if miss := missing(f, required...); len(miss) > 0 {
		return models.InsufficientDataResult(models.ModelAltman, joinPrefixed("missing inputs: ", miss), miss...)
	}
	assets, liabilities := f[models.Assets], f[models.Liabilities]
	if assets <= 0 || liabilities <= 0 {
		return models.InsufficientDataResult(models.ModelAltman, "assets and liabilities must be positive")
	}

	ebit := f[models.ProfitBeforeTax] + f[models.FinanceCosts]
	x1 := (f[models.CurrentAssets] - f[models.CurrentLiabilities]) / assets
	x2 := f[models.Reserves] / assets
	x3 := ebit / assets

	var x4 float64
	x4Name := "book equity / liabilities"
	if variant.marketValue {
		mc, _ := metrics.MarketCap(f, s.Market).Get()
		x4 = mc / liabilities
		x4Name = "market cap / liabilities"
	} else {
		x4 = f[models.Equity] / liabilities
	}

	components := []models.ScoreComponent{
		{Name: "working capital / assets", Value: ptr(x1)},
		{Name: "reserves / assets", Value: ptr(x2)},
		{Name: "EBIT / assets", Value: ptr(x3)},
		{Name: x4Name, Value: ptr(x4)},
	}
	if !f.Has(models.FinanceCosts) {
		components[2].Note = "finance costs missing, EBIT is profit before tax"
	}

	z := variant.intercept + variant.x1*x1 + variant.x2*x2 + variant.x3*x3 + variant.x4*x4
	if variant.usesSalesToTA {
		x5 := f[models.Revenue] / assets
		z += variant.x5 * x5
		components = append(components, models.ScoreComponent{Name: "revenue / assets", Value: ptr(x5)})
	}

	res := models.ForensicScoreResult{
		Model:      models.ModelAltman,
		Status:     models.StatusScored,
		Score:      ptr(z),
		Variant:    variant.name,
		FiscalYear: s.Period.FiscalYear,
		Components: components,
	}
	switch {
	case z < variant.distress:
		res.Risk, res.Label = models.RiskHigh, "distress"
	case z < variant.safe:
		res.Risk, res.Label = models.RiskMedium, "grey"
	default:
		res.Risk, res.Label = models.RiskLow, "safe"
	}
	res.Reason = fmt.Sprintf("%s-Score %.2f (%s zone, bands %.2f / %.2f)", variant.name, z, res.Label, variant.distress, variant.safe)
	if note != "" {
		res.Reason += "; " + note
	}
	return res
}

func selectAltmanVariant(s *models.NormalizedStatement, opts AltmanOptions) (altmanVariant, string) {
	switch opts.CompanyType {
	case models.CompanyService:
		return altmanVariants[VariantZDouble], ""
	case models.CompanyEmerging:
		return altmanVariants[VariantEmerging], ""
	}
	if !opts.Listed {
		return altmanVariants[VariantZPrime], ""
	}
	if mc, ok := metrics.MarketCap(s.Fields, s.Market).Get(); !ok || mc <= 0 {
		return altmanVariants[VariantZPrime], "market cap unavailable, using book equity (Z')"
	}
	return altmanVariants[VariantZ], ""
}

// IsDistressed reports whether an Altman result is in the distress zone.
func IsDistressed(r models.ForensicScoreResult) bool {
	return r.Model == models.ModelAltman && r.Available() && r.Risk == models.RiskHigh
}
