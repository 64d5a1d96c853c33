package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// statementRecord is the stored form of a statement. The period columns are
// copied out of the statement so badgerhold can filter on them.
type statementRecord struct {
	Key           string `badgerhold:"key"`
	Symbol        string `badgerhold:"index"`
	StatementType string
	FiscalYear    int
	Quarter       string
	IsAnnual      bool
	EndDate       time.Time
	Statement     models.NormalizedStatement
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StatementStorage implements interfaces.StatementStorage for Badger
type StatementStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex // serializes read-modify-write upserts and patches
}

// NewStatementStorage creates a new StatementStorage instance
func NewStatementStorage(db *BadgerDB, logger arbor.ILogger) interfaces.StatementStorage {
	return &StatementStorage{
		db:     db,
		logger: logger,
	}
}

func (s *StatementStorage) UpsertStatement(ctx context.Context, stmt *models.NormalizedStatement) (bool, error) {
	if stmt == nil {
		return false, fmt.Errorf("nil statement")
	}
	if err := stmt.Period.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := stmt.Key()
	now := time.Now()
	rec := statementRecord{CreatedAt: now}
	created := true

	var existing statementRecord
	err := s.db.Store().Get(key, &existing)
	switch {
	case err == nil:
		created = false
		rec.CreatedAt = existing.CreatedAt
	case !errors.Is(err, badgerhold.ErrNotFound):
		return false, fmt.Errorf("failed to read statement %s: %w", key, err)
	}

	stored := *stmt
	stored.Period.Symbol = strings.ToUpper(strings.TrimSpace(stored.Period.Symbol))
	stored.UpdatedAt = now

	rec.Key = key
	rec.Symbol = stored.Period.Symbol
	rec.StatementType = string(stored.Period.StatementType)
	rec.FiscalYear = stored.Period.FiscalYear
	rec.Quarter = string(stored.Period.Quarter)
	rec.IsAnnual = stored.Period.IsAnnual
	rec.EndDate = stored.Period.EndDate
	rec.Statement = stored
	rec.UpdatedAt = now

	if err := s.db.Store().Upsert(key, &rec); err != nil {
		return false, fmt.Errorf("failed to upsert statement %s: %w", key, err)
	}

	s.logger.Debug().Str("key", key).Bool("created", created).Msg("Statement upserted")
	return created, nil
}

func (s *StatementStorage) GetStatement(ctx context.Context, key string) (*models.NormalizedStatement, error) {
	var rec statementRecord
	if err := s.db.Store().Get(key, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, models.ErrStatementNotFound
		}
		return nil, fmt.Errorf("failed to get statement %s: %w", key, err)
	}
	stmt := rec.Statement
	return &stmt, nil
}

func (s *StatementStorage) ListStatements(ctx context.Context, filter interfaces.StatementFilter) ([]*models.NormalizedStatement, error) {
	query := badgerhold.Where("Symbol").Eq(strings.ToUpper(strings.TrimSpace(filter.Symbol))).Index("Symbol")
	if filter.StatementType != "" {
		query = query.And("StatementType").Eq(string(filter.StatementType))
	}
	if filter.AnnualOnly {
		query = query.And("IsAnnual").Eq(true)
	}
	if filter.QuarterlyOnly {
		query = query.And("IsAnnual").Eq(false)
	}

	var records []statementRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list statements for %s: %w", filter.Symbol, err)
	}

	stmts := make([]*models.NormalizedStatement, 0, len(records))
	for i := range records {
		stmt := records[i].Statement
		stmts = append(stmts, &stmt)
	}
	models.SortNewestFirst(stmts)
	if filter.Limit > 0 && len(stmts) > filter.Limit {
		stmts = stmts[:filter.Limit]
	}
	return stmts, nil
}

func (s *StatementStorage) ListSymbols(ctx context.Context) ([]string, error) {
	var records []statementRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	seen := make(map[string]bool)
	symbols := []string{}
	for _, r := range records {
		if !seen[r.Symbol] {
			seen[r.Symbol] = true
			symbols = append(symbols, r.Symbol)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (s *StatementStorage) CountByType(ctx context.Context, symbol string) (map[models.StatementType]int, error) {
	counts := map[models.StatementType]int{
		models.StatementStandalone:   0,
		models.StatementConsolidated: 0,
	}
	for st := range counts {
		n, err := s.db.Store().Count(&statementRecord{},
			badgerhold.Where("Symbol").Eq(strings.ToUpper(strings.TrimSpace(symbol))).Index("Symbol").And("StatementType").Eq(string(st)))
		if err != nil {
			return nil, fmt.Errorf("failed to count %s statements for %s: %w", st, symbol, err)
		}
		counts[st] = int(n)
	}
	return counts, nil
}

func (s *StatementStorage) PatchMarket(ctx context.Context, key string, market *models.MarketSnapshot, calculated models.CalculatedFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec statementRecord
	if err := s.db.Store().Get(key, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return models.ErrStatementNotFound
		}
		return fmt.Errorf("failed to read statement %s: %w", key, err)
	}

	rec.Statement.Market = market
	rec.Statement.Calculated = calculated
	rec.Statement.UpdatedAt = time.Now()
	rec.UpdatedAt = rec.Statement.UpdatedAt

	if err := s.db.Store().Update(key, &rec); err != nil {
		return fmt.Errorf("failed to patch market data on %s: %w", key, err)
	}
	return nil
}

func (s *StatementStorage) DeleteSymbol(ctx context.Context, symbol string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := badgerhold.Where("Symbol").Eq(strings.ToUpper(strings.TrimSpace(symbol))).Index("Symbol")
	n, err := s.db.Store().Count(&statementRecord{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count statements for %s: %w", symbol, err)
	}
	if err := s.db.Store().DeleteMatching(&statementRecord{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete statements for %s: %w", symbol, err)
	}
	s.logger.Info().Str("symbol", symbol).Int("deleted", int(n)).Msg("Statements deleted")
	return int(n), nil
}
