package validation

import (
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/sector"
	"github.com/ternarybob/scrutor/internal/services/metrics"
)

// Year-over-year swing limits. Breaches are warnings, never errors.
const (
	RevenueDropLimit = -0.50
	RevenueJumpLimit = 3.00
	AssetsDropLimit  = -0.40
	AssetsJumpLimit  = 2.00
)

// ValidateSeries checks year-over-year swings across a newest-first series.
// Completeness is the mean completeness of the statements.
func (v *Validator) ValidateSeries(stmts []*models.NormalizedStatement) models.ValidationResult {
	c := &checks{}
	if len(stmts) == 0 {
		c.warn("no statements")
		return c.result(0, v.cfg.MinCompleteness)
	}

	total := 0.0
	for i, s := range stmts {
		total += Completeness(s.Fields, s.IsBanking || sector.StatementIsBanking(s))
		if i+1 < len(stmts) {
			swings(c, s, stmts[i+1])
		}
	}
	completeness := total / float64(len(stmts))

	res := c.result(completeness, v.cfg.MinCompleteness)
	res.Valid = len(c.errors) == 0
	return res
}

func swings(c *checks, curr, prev *models.NormalizedStatement) {
	swing(c, curr, prev, models.Revenue, RevenueDropLimit, RevenueJumpLimit)
	swing(c, curr, prev, models.Assets, AssetsDropLimit, AssetsJumpLimit)
}

func swing(c *checks, curr, prev *models.NormalizedStatement, field models.Field, lo, hi float64) {
	a, ok1 := curr.Value(field)
	b, ok2 := prev.Value(field)
	if !ok1 || !ok2 {
		return
	}
	change, ok := metrics.YoY(a, b).Get()
	if !ok {
		return
	}
	if change < lo || change > hi {
		c.warn("FY%d %s changed %+.0f%% year over year", curr.Period.FiscalYear, field, change*100)
		return
	}
	c.pass()
}
