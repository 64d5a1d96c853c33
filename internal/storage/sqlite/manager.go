package sqlite

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
)

// Manager implements the StorageManager interface
type Manager struct {
	db         *SQLiteDB
	statements interfaces.StatementStorage
	reports    interfaces.ReportStorage
	logger     arbor.ILogger
}

// NewManager creates a new SQLite storage manager
func NewManager(logger arbor.ILogger, config *common.SQLiteConfig) (interfaces.StorageManager, error) {
	db, err := NewSQLiteDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:         db,
		statements: NewStatementStorage(db, logger),
		reports:    NewReportStorage(db, logger),
		logger:     logger,
	}, nil
}

// StatementStorage returns the statement store
func (m *Manager) StatementStorage() interfaces.StatementStorage {
	return m.statements
}

// ReportStorage returns the report cache
func (m *Manager) ReportStorage() interfaces.ReportStorage {
	return m.reports
}

// DB returns the underlying *sql.DB
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.DB()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
