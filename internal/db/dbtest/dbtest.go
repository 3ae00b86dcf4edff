// Package dbtest provides a migrated in-memory database for tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mompick/mompick-admin/internal/db/models"
)

// New opens a private in-memory sqlite database with every table migrated.
// The pool is limited to one connection, otherwise each connection would see
// its own empty database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	return db
}

// Profile inserts an app user.
func Profile(t *testing.T, db *gorm.DB, name string, active bool) models.Profile {
	t.Helper()

	p := models.Profile{
		FullName: name,
		Nickname: name,
		Email:    name + "@example.com",
		IsActive: active,
	}
	require.NoError(t, db.Create(&p).Error)

	return p
}
