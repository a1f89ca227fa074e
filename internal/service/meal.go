package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/calorieking/backend/internal/models"
	"github.com/calorieking/backend/internal/types"
)

const (
	DefaultMealLimit = 50
	MaxMealLimit     = 200
)

// MealService persists meals scoped to their owner
type MealService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewMealService(db *gorm.DB, log logrus.FieldLogger) *MealService {
	return &MealService{
		db:  db,
		log: log.WithField("component", "meals"),
	}
}

// Save stores a new meal for userID and returns its ID
func (s *MealService) Save(ctx context.Context, userID uuid.UUID, mealName string, foods []types.FoodItem, totalCalories types.Calories, imageData string) (uuid.UUID, error) {
	meal := models.Meal{
		UserID:        userID,
		MealName:      strings.TrimSpace(mealName),
		Foods:         models.FoodItems(foods),
		TotalCalories: totalCalories,
		ImageData:     imageData,
	}
	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to save meal: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"meal_id":        meal.ID,
		"user_id":        userID,
		"total_calories": totalCalories,
		"foods":          len(foods),
	}).Info("Meal saved")
	return meal.ID, nil
}

// ListForUser returns the user's meals, newest first
func (s *MealService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Meal, error) {
	if limit <= 0 {
		limit = DefaultMealLimit
	}
	if limit > MaxMealLimit {
		limit = MaxMealLimit
	}

	meals := []models.Meal{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

// Delete removes a meal only when it belongs to userID. It reports false both
// when the meal does not exist and when it belongs to someone else.
func (s *MealService) Delete(ctx context.Context, mealID, userID uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&models.Meal{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete meal: %w", result.Error)
	}

	deleted := result.RowsAffected > 0
	if deleted {
		s.log.WithFields(logrus.Fields{"meal_id": mealID, "user_id": userID}).Info("Meal deleted")
	}
	return deleted, nil
}
