// Package servicetest holds helpers shared by the service test suites.
package servicetest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/umojalearning/umoja-backend/internal/model"
)

// DB opens a fresh in-memory database with the full schema applied.
// Each call returns an isolated instance.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := model.AutoMigrateAll(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts a user row and returns it.
func SeedUser(t *testing.T, db *gorm.DB, externalID, email string, role model.Role) *model.User {
	t.Helper()

	u := &model.User{ExternalID: externalID, Email: email, Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return u
}
