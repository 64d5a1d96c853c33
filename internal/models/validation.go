package models

// ValidationResult is produced per statement and never mutated afterwards.
type ValidationResult struct {
	Valid        bool     `json:"valid"`
	QualityScore float64  `json:"quality_score"` // 0-100
	Completeness float64  `json:"completeness"`  // 0-100
	PassedChecks int      `json:"passed_checks"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
}

// StatementValidation pairs a validation result with the period it describes.
type StatementValidation struct {
	Key        string           `json:"key"`
	FiscalYear int              `json:"fiscal_year"`
	Result     ValidationResult `json:"result"`
}
