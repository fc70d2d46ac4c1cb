package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&Customer{},
		&Renewal{},
		&MessageTemplate{},
		&MessageLog{},
		&Setting{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
