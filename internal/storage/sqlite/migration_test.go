package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/models"
)

func TestMigrations_CreateOneColumnPerField(t *testing.T) {
	db, err := NewSQLiteDB(arbor.NewLogger(), &common.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.DB().QueryContext(context.Background(), "SELECT name FROM pragma_table_info('financial_statements')")
	require.NoError(t, err)
	columns := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		columns[name] = true
	}
	require.NoError(t, rows.Close())

	for _, spec := range models.AllFields() {
		assert.True(t, columns[spec.Column], "missing raw column %s", spec.Column)
	}
	for _, c := range calcColumns {
		assert.True(t, columns[c.name], "missing calculated column %s", c.name)
	}
}

func TestMigrations_ReopenIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrutor.db")
	cfg := &common.SQLiteConfig{Path: path, BusyTimeoutMS: 1000, WALMode: true}

	db, err := NewSQLiteDB(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewSQLiteDB(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}
