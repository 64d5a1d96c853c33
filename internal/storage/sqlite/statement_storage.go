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

const dateLayout = "2006-01-02"

var metaColumns = []string{
	"statement_key", "symbol", "fiscal_year", "quarter", "statement_type",
	"start_date", "end_date", "is_annual", "dialect", "is_banking", "currency",
	"synthesized", "source_document", "derived", "sources", "warnings", "market",
	"created_at", "updated_at",
}

// StatementStorage implements interfaces.StatementStorage for SQLite
type StatementStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
	mu     sync.Mutex // Prevents SQLITE_BUSY errors on concurrent writes

	columns   []string
	raw       []rawColumn
	upsertSQL string
	selectSQL string
}

// NewStatementStorage creates a new StatementStorage instance
func NewStatementStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.StatementStorage {
	s := &StatementStorage{db: db, logger: logger, raw: rawColumns()}

	s.columns = append(s.columns, metaColumns...)
	for _, c := range s.raw {
		s.columns = append(s.columns, c.name)
	}
	for _, c := range calcColumns {
		s.columns = append(s.columns, c.name)
	}

	updates := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		if c == "statement_key" || c == "created_at" {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.columns)), ", ")
	s.upsertSQL = fmt.Sprintf(`INSERT INTO financial_statements (%s) VALUES (%s)
		ON CONFLICT(statement_key) DO UPDATE SET %s`,
		strings.Join(s.columns, ", "), placeholders, strings.Join(updates, ", "))
	s.selectSQL = fmt.Sprintf("SELECT %s FROM financial_statements", strings.Join(s.columns, ", "))
	return s
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
	var count int
	if err := s.db.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM financial_statements WHERE statement_key = ?", key).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to read statement %s: %w", key, err)
	}

	args, err := s.bindArgs(stmt, time.Now())
	if err != nil {
		return false, err
	}
	if _, err := s.db.db.ExecContext(ctx, s.upsertSQL, args...); err != nil {
		return false, fmt.Errorf("failed to upsert statement %s: %w", key, err)
	}

	s.logger.Debug().Str("key", key).Bool("created", count == 0).Msg("Statement upserted")
	return count == 0, nil
}

func (s *StatementStorage) bindArgs(stmt *models.NormalizedStatement, now time.Time) ([]any, error) {
	p := stmt.Period
	derived, err := jsonColumn(stmt.Derived, len(stmt.Derived) > 0)
	if err != nil {
		return nil, err
	}
	sources, err := jsonColumn(stmt.Sources, len(stmt.Sources) > 0)
	if err != nil {
		return nil, err
	}
	warnings, err := jsonColumn(stmt.Warnings, len(stmt.Warnings) > 0)
	if err != nil {
		return nil, err
	}
	market, err := jsonColumn(stmt.Market, stmt.Market != nil)
	if err != nil {
		return nil, err
	}
	var start any
	if !p.StartDate.IsZero() {
		start = p.StartDate.Format(dateLayout)
	}

	args := []any{
		p.Key(), strings.ToUpper(strings.TrimSpace(p.Symbol)), p.FiscalYear, string(p.Quarter), string(p.StatementType),
		start, p.EndDate.Format(dateLayout), p.IsAnnual, string(stmt.Dialect), stmt.IsBanking, stmt.Currency,
		stmt.Synthesized, stmt.SourceDocument, derived, sources, warnings, market,
		now.Unix(), now.Unix(),
	}
	for _, c := range s.raw {
		args = append(args, c.value(stmt.Fields))
	}
	return append(args, calcValues(stmt.Calculated)...), nil
}

func jsonColumn(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode column: %w", err)
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *StatementStorage) scan(row rowScanner) (*models.NormalizedStatement, error) {
	var (
		key, symbol, quarter, stType, end   string
		start, dialect, currency, sourceDoc sql.NullString
		derived, sources, warnings, market  sql.NullString
		fy                                  int
		isAnnual, isBanking, synthesized    bool
		createdAt, updatedAt                int64
	)
	dest := []any{
		&key, &symbol, &fy, &quarter, &stType,
		&start, &end, &isAnnual, &dialect, &isBanking, &currency,
		&synthesized, &sourceDoc, &derived, &sources, &warnings, &market,
		&createdAt, &updatedAt,
	}
	rawVals := make([]sql.NullFloat64, len(s.raw))
	for i := range rawVals {
		dest = append(dest, &rawVals[i])
	}
	calcVals := make([]sql.NullFloat64, len(calcColumns))
	for i := range calcVals {
		dest = append(dest, &calcVals[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	stmt := &models.NormalizedStatement{
		Period: models.FilingPeriod{
			Symbol:        symbol,
			FiscalYear:    fy,
			Quarter:       models.Quarter(quarter),
			StatementType: models.StatementType(stType),
			IsAnnual:      isAnnual,
		},
		Dialect:        models.Dialect(dialect.String),
		IsBanking:      isBanking,
		Currency:       currency.String,
		Synthesized:    synthesized,
		SourceDocument: sourceDoc.String,
		Fields:         models.Fields{},
		UpdatedAt:      time.Unix(updatedAt, 0),
	}
	var err error
	if stmt.Period.EndDate, err = time.Parse(dateLayout, end); err != nil {
		return nil, fmt.Errorf("bad end_date on %s: %w", key, err)
	}
	if start.Valid {
		if stmt.Period.StartDate, err = time.Parse(dateLayout, start.String); err != nil {
			return nil, fmt.Errorf("bad start_date on %s: %w", key, err)
		}
	}

	for i, c := range s.raw {
		if rawVals[i].Valid {
			stmt.Fields[c.field] = rawVals[i].Float64
		}
	}
	for i, c := range calcColumns {
		if calcVals[i].Valid {
			v := calcVals[i].Float64
			*c.ptr(&stmt.Calculated) = &v
		}
	}

	for _, j := range []struct {
		col sql.NullString
		dst any
	}{
		{derived, &stmt.Derived},
		{sources, &stmt.Sources},
		{warnings, &stmt.Warnings},
		{market, &stmt.Market},
	} {
		if !j.col.Valid {
			continue
		}
		if err := json.Unmarshal([]byte(j.col.String), j.dst); err != nil {
			return nil, fmt.Errorf("bad json column on %s: %w", key, err)
		}
	}
	return stmt, nil
}

func (s *StatementStorage) GetStatement(ctx context.Context, key string) (*models.NormalizedStatement, error) {
	row := s.db.db.QueryRowContext(ctx, s.selectSQL+" WHERE statement_key = ?", key)
	stmt, err := s.scan(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrStatementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement %s: %w", key, err)
	}
	return stmt, nil
}

func (s *StatementStorage) ListStatements(ctx context.Context, filter interfaces.StatementFilter) ([]*models.NormalizedStatement, error) {
	where := []string{"symbol = ?"}
	args := []any{strings.ToUpper(strings.TrimSpace(filter.Symbol))}
	if filter.StatementType != "" {
		where = append(where, "statement_type = ?")
		args = append(args, string(filter.StatementType))
	}
	if filter.AnnualOnly {
		where = append(where, "is_annual = 1")
	}
	if filter.QuarterlyOnly {
		where = append(where, "is_annual = 0")
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY end_date DESC, is_annual DESC, statement_type ASC",
		s.selectSQL, strings.Join(where, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements for %s: %w", filter.Symbol, err)
	}
	defer rows.Close()

	stmts := []*models.NormalizedStatement{}
	for rows.Next() {
		stmt, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read statement row: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, rows.Err()
}

func (s *StatementStorage) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.db.QueryContext(ctx, "SELECT DISTINCT symbol FROM financial_statements ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *StatementStorage) CountByType(ctx context.Context, symbol string) (map[models.StatementType]int, error) {
	counts := map[models.StatementType]int{
		models.StatementStandalone:   0,
		models.StatementConsolidated: 0,
	}
	rows, err := s.db.db.QueryContext(ctx,
		"SELECT statement_type, COUNT(*) FROM financial_statements WHERE symbol = ? GROUP BY statement_type",
		strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return nil, fmt.Errorf("failed to count statements for %s: %w", symbol, err)
	}
	defer rows.Close()

	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[models.StatementType(st)] = n
	}
	return counts, rows.Err()
}

func (s *StatementStorage) PatchMarket(ctx context.Context, key string, market *models.MarketSnapshot, calculated models.CalculatedFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	marketJSON, err := jsonColumn(market, market != nil)
	if err != nil {
		return err
	}
	sets := []string{"market = ?", "updated_at = ?"}
	args := []any{marketJSON, time.Now().Unix()}
	for i, v := range calcValues(calculated) {
		sets = append(sets, calcColumns[i].name+" = ?")
		args = append(args, v)
	}
	args = append(args, key)

	res, err := s.db.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE financial_statements SET %s WHERE statement_key = ?", strings.Join(sets, ", ")), args...)
	if err != nil {
		return fmt.Errorf("failed to patch market data on %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrStatementNotFound
	}
	return nil
}

func (s *StatementStorage) DeleteSymbol(ctx context.Context, symbol string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.db.ExecContext(ctx, "DELETE FROM financial_statements WHERE symbol = ?", strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return 0, fmt.Errorf("failed to delete statements for %s: %w", symbol, err)
	}
	n, _ := res.RowsAffected()
	s.logger.Info().Str("symbol", symbol).Int("deleted", int(n)).Msg("Statements deleted")
	return int(n), nil
}
