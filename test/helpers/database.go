package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/andrescamacho/imperium/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory SQLite database that lives as long as t
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
