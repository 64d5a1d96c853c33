package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// migrate runs database migrations
func (s *SQLiteDB) migrate() error {
	ctx := context.Background()

	if err := s.createMigrationsTable(ctx); err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "financial_statements", up: migrateV1},
		{version: 2, name: "forensic_reports", up: migrateV2},
	}

	for _, m := range migrations {
		if err := s.runMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}

	return s.ensureFieldColumns(ctx)
}

type migration struct {
	version int
	name    string
	up      func(context.Context, *sql.Tx) error
}

func (s *SQLiteDB) createMigrationsTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *SQLiteDB) runMigration(ctx context.Context, m migration) error {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.up(ctx, tx); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, strftime('%s', 'now'))",
		m.version, m.name)
	if err != nil {
		return err
	}

	s.logger.Debug().Int("version", m.version).Str("name", m.name).Msg("Migration applied")
	return tx.Commit()
}

// migrateV1 creates the statements table: one row per primary key with the
// raw field columns followed by the calculated columns.
func migrateV1(ctx context.Context, tx *sql.Tx) error {
	var b strings.Builder
	b.WriteString(`CREATE TABLE financial_statements (
		statement_key TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		fiscal_year INTEGER NOT NULL,
		quarter TEXT NOT NULL,
		statement_type TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT NOT NULL,
		is_annual INTEGER NOT NULL,
		dialect TEXT,
		is_banking INTEGER NOT NULL DEFAULT 0,
		currency TEXT,
		synthesized INTEGER NOT NULL DEFAULT 0,
		source_document TEXT,
		derived TEXT,
		sources TEXT,
		warnings TEXT,
		market TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL`)
	for _, c := range rawColumns() {
		fmt.Fprintf(&b, ",\n\t\t%s %s", c.name, c.sqlType())
	}
	for _, c := range calcColumns {
		fmt.Fprintf(&b, ",\n\t\t%s REAL", c.name)
	}
	b.WriteString(",\n\t\tUNIQUE (symbol, fiscal_year, quarter, statement_type)\n\t)")

	stmts := []string{
		b.String(),
		`CREATE INDEX idx_statements_symbol_type ON financial_statements(symbol, statement_type, end_date DESC)`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func migrateV2(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE forensic_reports (
		symbol TEXT NOT NULL,
		statement_type TEXT NOT NULL,
		run_id TEXT NOT NULL,
		recommendation TEXT NOT NULL,
		score REAL,
		generated_at TEXT NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (symbol, statement_type)
	)`)
	return err
}

// ensureFieldColumns adds columns for canonical fields registered after the
// table was created.
func (s *SQLiteDB) ensureFieldColumns(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info(financial_statements)")
	if err != nil {
		return err
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, c := range rawColumns() {
		if existing[c.name] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE financial_statements ADD COLUMN %s %s", c.name, c.sqlType())); err != nil {
			return fmt.Errorf("failed to add column %s: %w", c.name, err)
		}
		s.logger.Info().Str("column", c.name).Msg("Added statement column")
	}
	for _, c := range calcColumns {
		if existing[c.name] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE financial_statements ADD COLUMN %s REAL", c.name)); err != nil {
			return fmt.Errorf("failed to add column %s: %w", c.name, err)
		}
	}
	return nil
}
