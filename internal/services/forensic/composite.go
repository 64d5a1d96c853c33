package forensic

import (
	"fmt"
	"strings"

	"github.com/ternarybob/scrutor/internal/models"
)

// CalculateComposite combines model results into one risk score.
//
// Each scored model contributes weight * bucket (LOW=1, MEDIUM=2, HIGH=3).
// The sum is normalized against weight * 3 of the models that were actually
// scored, so a missing model shrinks the denominator instead of counting as
// low risk. DataCoverage is the evaluated share of the total weight.
//
// Recommendation, first match wins:
// - coverage below MinCoverage: INSUFFICIENT_DATA
// - manipulator and (distress or a high-severity flag): AVOID
// - score >= AvoidScore: AVOID
// - manipulator, distress or a high-severity flag: CAUTION
// - weak fundamentals or score >= MonitorScore: MONITOR
// - otherwise: ACCEPTABLE
func CalculateComposite(results []models.ForensicScoreResult, cfg Config) models.CompositeRiskScore {
	byModel := make(map[models.ForensicModel]models.ForensicScoreResult, len(results))
	for _, r := range results {
		byModel[r.Model] = r
	}

	var totalWeight, evaluatedWeight, weighted float64
	contributions := make([]models.CompositeContribution, 0, len(models.AllModels))
	for _, m := range models.AllModels {
		w := cfg.weight(m)
		totalWeight += w

		r, ok := byModel[m]
		c := models.CompositeContribution{Model: m, Weight: w, Status: models.StatusInsufficientData}
		if ok {
			c.Status = r.Status
		}
		if ok && r.Available() && r.Risk.Bucket() > 0 {
			c.Risk = r.Risk
			c.Bucket = r.Risk.Bucket()
			c.Weighted = w * float64(c.Bucket)
			c.Evaluated = true
			evaluatedWeight += w
			weighted += c.Weighted
		}
		contributions = append(contributions, c)
	}

	out := models.CompositeRiskScore{Contributions: contributions}
	if totalWeight > 0 {
		out.DataCoverage = evaluatedWeight / totalWeight
	}
	if evaluatedWeight > 0 {
		score := weighted / (evaluatedWeight * 3) * 100
		out.Score = &score
		switch {
		case score >= cfg.AvoidScore:
			out.Risk = models.RiskHigh
		case score >= cfg.MonitorScore:
			out.Risk = models.RiskMedium
		default:
			out.Risk = models.RiskLow
		}
	}

	manipulator := IsManipulator(byModel[models.ModelBeneish])
	distress := IsDistressed(byModel[models.ModelAltman])
	weak := IsWeak(byModel[models.ModelPiotroski])
	highFlag := false
	for _, r := range results {
		if r.Available() && r.HasHighFlag() {
			highFlag = true
		}
	}

	var drivers []string
	if manipulator {
		drivers = append(drivers, "Beneish likely manipulator")
	}
	if distress {
		drivers = append(drivers, "Altman distress zone")
	}
	if highFlag {
		drivers = append(drivers, "high-severity forensic flag")
	}
	if weak {
		drivers = append(drivers, "weak Piotroski fundamentals")
	}
	out.Drivers = drivers

	score := 0.0
	if out.Score != nil {
		score = *out.Score
	}
	switch {
	case out.DataCoverage < cfg.MinCoverage || out.Score == nil:
		out.Recommendation = models.RecommendInsufficientData
		out.Reasoning = fmt.Sprintf("coverage %.0f%% below %.0f%%", out.DataCoverage*100, cfg.MinCoverage*100)
		return out
	case manipulator && (distress || highFlag):
		out.Recommendation = models.RecommendAvoid
	case score >= cfg.AvoidScore:
		out.Recommendation = models.RecommendAvoid
	case manipulator || distress || highFlag:
		out.Recommendation = models.RecommendCaution
	case weak || score >= cfg.MonitorScore:
		out.Recommendation = models.RecommendMonitor
	default:
		out.Recommendation = models.RecommendAcceptable
	}

	out.Reasoning = fmt.Sprintf("score %.1f at %.0f%% coverage", score, out.DataCoverage*100)
	if len(drivers) > 0 {
		out.Reasoning += ": " + strings.Join(drivers, "; ")
	}
	return out
}

// Results holds one run of the four models and their composite.
type Results struct {
	Beneish   models.ForensicScoreResult
	Altman    models.ForensicScoreResult
	Piotroski models.ForensicScoreResult
	JScore    models.ForensicScoreResult
	Composite models.CompositeRiskScore
}

// Calculate runs the four models over a newest-first annual series and
// combines them. The two-year models only use stmts[1] when it is the fiscal
// year immediately before stmts[0].
func Calculate(stmts []*models.NormalizedStatement, opts AltmanOptions, cfg Config) Results {
	var curr, prev *models.NormalizedStatement
	if len(stmts) > 0 {
		curr = stmts[0]
	}
	if len(stmts) > 1 && curr != nil && stmts[1] != nil && stmts[1].Period.FiscalYear == curr.Period.FiscalYear-1 {
		prev = stmts[1]
	}

	res := Results{
		Beneish:   CalculateBeneish(curr, prev, cfg),
		Altman:    CalculateAltman(curr, opts),
		Piotroski: CalculatePiotroski(curr, prev),
		JScore:    CalculateJScore(stmts, cfg.JScore),
	}
	res.Composite = CalculateComposite([]models.ForensicScoreResult{res.Beneish, res.Altman, res.Piotroski, res.JScore}, cfg)
	return res
}
