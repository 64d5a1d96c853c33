package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// reportRecord holds one cached report as JSON, keyed by symbol and
// statement type.
type reportRecord struct {
	Key            string `badgerhold:"key"`
	Symbol         string
	StatementType  string
	RunID          string
	Recommendation string
	Score          *float64
	GeneratedAt    time.Time
	Payload        []byte
}

func reportKey(symbol string, statementType models.StatementType) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "|" + string(statementType)
}

// ReportStorage implements interfaces.ReportStorage for Badger
type ReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewReportStorage creates a new ReportStorage instance
func NewReportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ReportStorage {
	return &ReportStorage{db: db, logger: logger}
}

func (s *ReportStorage) SaveReport(ctx context.Context, report *models.ForensicReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report for %s: %w", report.Symbol, err)
	}
	key := reportKey(report.Symbol, report.StatementType)
	rec := reportRecord{
		Key:            key,
		Symbol:         strings.ToUpper(report.Symbol),
		StatementType:  string(report.StatementType),
		RunID:          report.RunID,
		Recommendation: string(report.Composite.Recommendation),
		Score:          report.Composite.Score,
		GeneratedAt:    report.GeneratedAt,
		Payload:        payload,
	}
	if err := s.db.Store().Upsert(key, &rec); err != nil {
		return fmt.Errorf("failed to save report %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Str("run_id", report.RunID).Msg("Report cached")
	return nil
}

func (s *ReportStorage) GetReport(ctx context.Context, symbol string, statementType models.StatementType) (*models.ForensicReport, error) {
	var rec reportRecord
	if err := s.db.Store().Get(reportKey(symbol, statementType), &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, models.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report for %s: %w", symbol, err)
	}
	var report models.ForensicReport
	if err := json.Unmarshal(rec.Payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report for %s: %w", symbol, err)
	}
	return &report, nil
}

func (s *ReportStorage) ListReports(ctx context.Context) ([]interfaces.ReportSummary, error) {
	var records []reportRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	out := make([]interfaces.ReportSummary, 0, len(records))
	for _, r := range records {
		out = append(out, interfaces.ReportSummary{
			Symbol:         r.Symbol,
			StatementType:  models.StatementType(r.StatementType),
			RunID:          r.RunID,
			Recommendation: models.Recommendation(r.Recommendation),
			Score:          r.Score,
			GeneratedAt:    r.GeneratedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].StatementType < out[j].StatementType
	})
	return out, nil
}
