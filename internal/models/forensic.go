package models

// ForensicModel names one of the scoring models.
type ForensicModel string

const (
	ModelBeneish   ForensicModel = "beneish"
	ModelAltman    ForensicModel = "altman"
	ModelPiotroski ForensicModel = "piotroski"
	ModelJScore    ForensicModel = "jscore"
)

// AllModels lists the models in report order.
var AllModels = []ForensicModel{ModelBeneish, ModelAltman, ModelPiotroski, ModelJScore}

// ScoreStatus tags the variant held by a ForensicScoreResult.
type ScoreStatus string

const (
	StatusScored           ScoreStatus = "scored"
	StatusNotApplicable    ScoreStatus = "not_applicable"
	StatusInsufficientData ScoreStatus = "insufficient_data"
	StatusFailed           ScoreStatus = "failed"
)

// RiskLevel grades a model outcome or a flag severity.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Bucket returns the 1x/2x/3x composite weight of a risk level.
func (r RiskLevel) Bucket() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	}
	return 0
}

// ScoreComponent is one input or sub-score of a model.
type ScoreComponent struct {
	Name   string   `json:"name"`
	Value  *float64 `json:"value,omitempty"`
	Passed *bool    `json:"passed,omitempty"`
	Note   string   `json:"note,omitempty"`
}

// ForensicFlag is a tripped red flag with its own severity and rationale.
type ForensicFlag struct {
	Name       string    `json:"name"`
	Severity   RiskLevel `json:"severity"`
	Points     int       `json:"points"`
	FiscalYear int       `json:"fiscal_year"`
	Rationale  string    `json:"rationale"`
}

// ForensicScoreResult holds either a score with its risk category and
// breakdown, or an explicit not-applicable / insufficient-data marker.
type ForensicScoreResult struct {
	Model         ForensicModel    `json:"model"`
	Status        ScoreStatus      `json:"status"`
	Score         *float64         `json:"score,omitempty"`
	Risk          RiskLevel        `json:"risk,omitempty"`
	Label         string           `json:"label,omitempty"`
	Variant       string           `json:"variant,omitempty"`
	FiscalYear    int              `json:"fiscal_year,omitempty"`
	Components    []ScoreComponent `json:"components,omitempty"`
	Flags         []ForensicFlag   `json:"flags,omitempty"`
	MissingInputs []string         `json:"missing_inputs,omitempty"`
	Reason        string           `json:"reason"`
}

// Available reports whether the model produced a score.
func (r ForensicScoreResult) Available() bool {
	return r.Status == StatusScored && r.Score != nil
}

// HasHighFlag reports whether any flag is of high severity.
func (r ForensicScoreResult) HasHighFlag() bool {
	for _, f := range r.Flags {
		if f.Severity == RiskHigh {
			return true
		}
	}
	return false
}

// NotApplicableResult marks a model that must not be computed for the input.
func NotApplicableResult(model ForensicModel, reason string) ForensicScoreResult {
	return ForensicScoreResult{Model: model, Status: StatusNotApplicable, Reason: reason}
}

// InsufficientDataResult marks a model that lacks its required inputs.
func InsufficientDataResult(model ForensicModel, reason string, missing ...string) ForensicScoreResult {
	return ForensicScoreResult{Model: model, Status: StatusInsufficientData, Reason: reason, MissingInputs: missing}
}

// Recommendation is the final categorical outcome of the composite.
type Recommendation string

const (
	RecommendAvoid            Recommendation = "AVOID"
	RecommendCaution          Recommendation = "CAUTION"
	RecommendMonitor          Recommendation = "MONITOR"
	RecommendAcceptable       Recommendation = "ACCEPTABLE"
	RecommendInsufficientData Recommendation = "INSUFFICIENT_DATA"
)

// CompositeContribution records how one model fed the composite.
type CompositeContribution struct {
	Model     ForensicModel `json:"model"`
	Status    ScoreStatus   `json:"status"`
	Risk      RiskLevel     `json:"risk,omitempty"`
	Bucket    int           `json:"bucket"`
	Weight    float64       `json:"weight"`
	Weighted  float64       `json:"weighted"`
	Evaluated bool          `json:"evaluated"`
}

// CompositeRiskScore combines the available model results.
type CompositeRiskScore struct {
	Score          *float64                `json:"score,omitempty"` // 0-100, higher is riskier
	DataCoverage   float64                 `json:"data_coverage"`   // 0-1
	Risk           RiskLevel               `json:"risk,omitempty"`
	Recommendation Recommendation          `json:"recommendation"`
	Contributions  []CompositeContribution `json:"contributions"`
	Drivers        []string                `json:"drivers,omitempty"`
	Reasoning      string                  `json:"reasoning"`
}
