package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/scrutor/internal/models"
)

// StatementFilter selects statements of one symbol.
type StatementFilter struct {
	Symbol        string
	StatementType models.StatementType // empty matches both types
	AnnualOnly    bool
	QuarterlyOnly bool
	Limit         int // 0 = no limit
}

// StatementStorage persists normalized statements, one record per
// FilingPeriod primary key.
type StatementStorage interface {
	// UpsertStatement inserts or replaces the statement with the same key.
	// Returns true when the key did not exist before.
	UpsertStatement(ctx context.Context, stmt *models.NormalizedStatement) (bool, error)
	GetStatement(ctx context.Context, key string) (*models.NormalizedStatement, error)

	// ListStatements returns matching statements sorted by end date, newest first.
	ListStatements(ctx context.Context, filter StatementFilter) ([]*models.NormalizedStatement, error)
	ListSymbols(ctx context.Context) ([]string, error)
	CountByType(ctx context.Context, symbol string) (map[models.StatementType]int, error)

	// PatchMarket replaces the market snapshot and calculated fields of an
	// existing statement. Raw fields are never touched.
	PatchMarket(ctx context.Context, key string, market *models.MarketSnapshot, calculated models.CalculatedFields) error
	DeleteSymbol(ctx context.Context, symbol string) (int, error)
}

// ReportStorage caches the latest forensic report per symbol and statement
// type. Reports are always reproducible from statements.
type ReportStorage interface {
	SaveReport(ctx context.Context, report *models.ForensicReport) error
	GetReport(ctx context.Context, symbol string, statementType models.StatementType) (*models.ForensicReport, error)
	ListReports(ctx context.Context) ([]ReportSummary, error)
}

// ReportSummary is the index entry of a cached report.
type ReportSummary struct {
	Symbol         string                `json:"symbol"`
	StatementType  models.StatementType  `json:"statement_type"`
	RunID          string                `json:"run_id"`
	Recommendation models.Recommendation `json:"recommendation"`
	Score          *float64              `json:"score,omitempty"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// StorageManager owns the datastore connection and its stores.
type StorageManager interface {
	StatementStorage() StatementStorage
	ReportStorage() ReportStorage
	DB() interface{}
	Close() error
}
