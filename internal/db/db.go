// Package db opens the gorm connection for the configured engine.
package db

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/dsn"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/logger/adapter/stdlogger"
)

const defaultSlowQuery = 500 * time.Millisecond

// Open connects to the configured database engine.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		dialector = gormmysql.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(cfg))
	default:
		dialector = postgres.Open(dsn.Create(cfg))
	}

	slow := cfg.DB.SlowQuery
	if slow == 0 {
		slow = defaultSlowQuery
	}

	level := gormlogger.Warn
	if cfg.DevMode {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlogger.NewWithLevel(zerolog.WarnLevel), gormlogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect %s database", cfg.DB.GormEngine)
	}

	// an in-memory sqlite database only lives as long as its connection
	if cfg.DB.GormEngine == config.EngineSQLite && cfg.DB.Path == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get sql db")
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}
