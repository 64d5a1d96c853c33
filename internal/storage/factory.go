package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/storage/badger"
	"github.com/ternarybob/scrutor/internal/storage/sqlite"
)

// NewStorageManager opens the datastore selected by [storage] type. The
// caller owns the returned manager and must Close it.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Type {
	case common.StorageBadger, "":
		return badger.NewManager(logger, &config.Storage.Badger)
	case common.StorageSQLite:
		return sqlite.NewManager(logger, &config.Storage.SQLite)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (expected badger or sqlite)", config.Storage.Type)
	}
}
