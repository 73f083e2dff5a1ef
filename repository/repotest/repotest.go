// Package repotest provides throwaway stores for tests.
package repotest

import (
	"path/filepath"
	"testing"

	"citycompass/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteStore returns a migrated store backed by a sqlite file in a
// per-test temp dir. It is closed when the test ends.
func NewSQLiteStore(t testing.TB) *repository.GormStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "citycompass-test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_txlock=immediate"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := repository.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
