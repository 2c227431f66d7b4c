// server/internal/database/database.go
package database

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"port-ops-api-server/config"
	"port-ops-api-server/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

var passwordPattern = regexp.MustCompile(`(password=)([^\s]+)`)

// Open connects with retries, then migrates the schema.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var db *gorm.DB
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}
		log.Printf("database connection attempt=%d failed: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after %d attempts: %w", connectAttempts, err)
	}

	if cfg.Driver == "sqlite" {
		// One connection keeps SQLite from reporting "database is locked" under concurrent writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Printf("database connected driver=%s dsn=%s", cfg.Driver, passwordPattern.ReplaceAllString(cfg.DSN, `${1}***`))

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("database.dsn is empty")
		}
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates every table, including the id sequence table.
func Migrate(db *gorm.DB) error {
	tables := append(models.All(), &models.Sequence{})
	for _, m := range tables {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// OpenMemory opens an isolated in-memory SQLite database and migrates it.
// name must be unique per database wanted; tests pass t.Name().
func OpenMemory(name string) (*gorm.DB, error) {
	return Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + regexp.MustCompile(`[^A-Za-z0-9_]`).ReplaceAllString(name, "_") + "?mode=memory&cache=shared",
	})
}
