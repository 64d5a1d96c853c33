// Package forensic implements the Beneish, Altman, Piotroski and
// cash-flow forensics ("J") scoring models and the composite risk score
// that combines them.
//
// All functions are pure: they read normalized statements and return
// results without touching storage or logging.
package forensic

import "github.com/ternarybob/scrutor/internal/models"

// Config holds the tunable thresholds of the models.
type Config struct {
	// Beneish M-Score thresholds. M above High is a likely manipulator.
	BeneishHigh   float64
	BeneishMedium float64

	JScore JScoreConfig

	// Weights per model. A missing entry weighs 1.
	Weights map[models.ForensicModel]float64
	// MinCoverage routes the composite to INSUFFICIENT_DATA below this
	// fraction of evaluated weight.
	MinCoverage float64
	// Composite score thresholds (0-100).
	AvoidScore   float64
	MonitorScore float64
}

// JScoreConfig holds the materiality floors of the J-Score flags, in raw
// currency units. Flags on fields below their floor are suppressed.
type JScoreConfig struct {
	ReceivablesMateriality float64
	InventoryMateriality   float64
	OtherIncomeMateriality float64
	ReservesMateriality    float64
}

// DefaultConfig returns the published thresholds, ₹1 Cr floors for
// receivables, inventory and other income, and a ₹100 Cr reserves floor.
func DefaultConfig() Config {
	return Config{
		BeneishHigh:   -2.22,
		BeneishMedium: -2.50,
		JScore: JScoreConfig{
			ReceivablesMateriality: 1e7,
			InventoryMateriality:   1e7,
			OtherIncomeMateriality: 1e7,
			ReservesMateriality:    1e9,
		},
		Weights: map[models.ForensicModel]float64{
			models.ModelBeneish:   1,
			models.ModelAltman:    1,
			models.ModelPiotroski: 1,
			models.ModelJScore:    1,
		},
		MinCoverage:  0.5,
		AvoidScore:   70,
		MonitorScore: 45,
	}
}

func (c Config) weight(m models.ForensicModel) float64 {
	if w, ok := c.Weights[m]; ok {
		return w
	}
	return 1
}
