package repository

import (
	"fmt"
	"strings"

	"github.com/krakosik/pollbot/internal/dto"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. SQLite connections are limited to a
// single open connection and always run with foreign keys enabled, so cascades hold.
func Open(cfg dto.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	switch cfg.DatabaseType {
	case dto.DatabaseTypePostgres:
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
		}
		return db, nil
	case dto.DatabaseTypeSQLite:
		db, err := gorm.Open(sqlite.Open(sqliteDSN(cfg.DatabaseURL)), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: unsupported database type %q", dto.ErrInvalidArgument, cfg.DatabaseType)
	}
}

func sqliteDSN(url string) string {
	if strings.Contains(url, "_foreign_keys") {
		return url
	}
	if strings.Contains(url, "?") {
		return url + "&_foreign_keys=on"
	}
	return url + "?_foreign_keys=on"
}
