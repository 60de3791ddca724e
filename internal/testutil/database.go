// Package testutil provides in-memory database setup, fixtures, and
// assertion helpers shared by the service tests.
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tally/internal/models"
)

// allModels lists every GORM model, in creation order, for AutoMigrate.
var allModels = []interface{}{
	&models.User{},
	&models.Category{},
	&models.Transaction{},
	&models.Budget{},
	&models.Family{},
	&models.FamilyMember{},
	&models.ShoppingList{},
	&models.ShoppingListItem{},
	&models.AuditLog{},
}

// SetupTestDB opens an in-memory SQLite database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// TeardownTestDB closes the connection behind db.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("unwrap test database: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("close test database: %v", err)
	}
}
