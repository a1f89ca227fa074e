package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/calorieking/backend/internal/models"
)

// RunMigrations creates or updates the users and meals tables. It is
// idempotent and must be called explicitly once at startup.
func RunMigrations(db *gorm.DB, log logrus.FieldLogger) error {
	log.WithField("dialect", db.Dialector.Name()).Info("Running schema migrations")

	if err := db.AutoMigrate(&models.User{}, &models.Meal{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info("Schema migrations applied")
	return nil
}
