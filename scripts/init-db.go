package main

import (
	"log"

	"hospitality_pos/internal/config"
	"hospitality_pos/internal/database"
	"hospitality_pos/internal/migrations"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := migrations.RunMigrations(db, cfg.DeletePassword, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := migrations.SeedSampleData(db, logger); err != nil {
		logger.Fatal("failed to seed sample data", zap.Error(err))
	}

	logger.Info("database initialization completed")
}
