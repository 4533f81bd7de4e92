package main

import (
	"log"
	"log/slog"

	"room-relay/internal/config"
	"room-relay/internal/database"
	"room-relay/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.New(cfg.Log.Level, cfg.Log.Format)

	slog.Info("Starting database migration...", "driver", cfg.Database.Driver)

	// NewConnection runs the schema migration before returning
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	slog.Info("Database migration completed successfully!")
}
