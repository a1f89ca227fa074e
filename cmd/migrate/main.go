package main

import (
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/config"
	"github.com/calorieking/backend/internal/database"
	"github.com/calorieking/backend/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.Environment == config.Production)

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Info("Database is up to date")
}
