package database

import (
	"fmt"
	"log/slog"
	"time"

	"room-relay/internal/config"
	"room-relay/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxRetries = 5
	retryDelay = 5 * time.Second
)

// NewConnection opens the configured database and migrates the schema.
func NewConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	// Server databases may still be starting; sqlite either opens or doesn't.
	attempts := maxRetries
	if cfg.Driver == "sqlite" {
		attempts = 1
	}

	var db *gorm.DB
	for i := 1; i <= attempts; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		slog.Warn("Failed to connect to database", "driver", cfg.Driver, "attempt", i, "maxAttempts", attempts, "error", err)
		if i < attempts {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("Database connection established", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates the messages table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Message{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
