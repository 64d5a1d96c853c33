package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
)

// ReportStorage implements interfaces.ReportStorage for SQLite
type ReportStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
	mu     sync.Mutex
}

// NewReportStorage creates a new ReportStorage instance
func NewReportStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.ReportStorage {
	return &ReportStorage{db: db, logger: logger}
}

func (s *ReportStorage) SaveReport(ctx context.Context, report *models.ForensicReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report for %s: %w", report.Symbol, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var score any
	if report.Composite.Score != nil {
		score = *report.Composite.Score
	}
	_, err = s.db.db.ExecContext(ctx, `
		INSERT INTO forensic_reports (symbol, statement_type, run_id, recommendation, score, generated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, statement_type) DO UPDATE SET
			run_id = excluded.run_id,
			recommendation = excluded.recommendation,
			score = excluded.score,
			generated_at = excluded.generated_at,
			payload = excluded.payload`,
		strings.ToUpper(report.Symbol), string(report.StatementType), report.RunID,
		string(report.Composite.Recommendation), score, report.GeneratedAt.UTC().Format(time.RFC3339), string(payload))
	if err != nil {
		return fmt.Errorf("failed to save report for %s: %w", report.Symbol, err)
	}

	s.logger.Debug().Str("symbol", report.Symbol).Str("run_id", report.RunID).Msg("Report cached")
	return nil
}

func (s *ReportStorage) GetReport(ctx context.Context, symbol string, statementType models.StatementType) (*models.ForensicReport, error) {
	var payload string
	err := s.db.db.QueryRowContext(ctx,
		"SELECT payload FROM forensic_reports WHERE symbol = ? AND statement_type = ?",
		strings.ToUpper(strings.TrimSpace(symbol)), string(statementType)).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, models.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report for %s: %w", symbol, err)
	}

	var report models.ForensicReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report for %s: %w", symbol, err)
	}
	return &report, nil
}

func (s *ReportStorage) ListReports(ctx context.Context) ([]interfaces.ReportSummary, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT symbol, statement_type, run_id, recommendation, score, generated_at
		FROM forensic_reports ORDER BY symbol, statement_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	out := []interfaces.ReportSummary{}
	for rows.Next() {
		var (
			r           interfaces.ReportSummary
			st, rec     string
			score       sql.NullFloat64
			generatedAt string
		)
		if err := rows.Scan(&r.Symbol, &st, &r.RunID, &rec, &score, &generatedAt); err != nil {
			return nil, err
		}
		r.StatementType = models.StatementType(st)
		r.Recommendation = models.Recommendation(rec)
		if score.Valid {
			v := score.Float64
			r.Score = &v
		}
		r.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
