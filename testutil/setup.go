package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yoapunto/yoapunto-server/cache"
	"github.com/yoapunto/yoapunto-server/cache/local"
	dbsqlite "github.com/yoapunto/yoapunto-server/db/sqlite"
	"github.com/yoapunto/yoapunto-server/model"
	"gorm.io/gorm"
)

// SetupTestDB creates a uniquely named in-memory SQLite DB and runs
// AutoMigrate. The shared-cache DSN keeps the database alive across the
// connection pool; the unique name isolates parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := dbsqlite.Open(dsn)
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates an in-process LocalCache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := local.NewCache(local.Config{})
	require.NoError(t, err, "SetupTestCache: NewCache")
	t.Cleanup(c.Close)
	return c
}
