package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/calorieking/backend/internal/models"
	"github.com/calorieking/backend/internal/types"
)

// VisionAnalyzer returns the model's raw text for a meal photo or a single food
type VisionAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (string, error)
	Reanalyze(ctx context.Context, foodName, portion string) (string, error)
}

// ImageStore persists a meal photo and returns the value kept in image_data
type ImageStore interface {
	Store(ctx context.Context, userID uuid.UUID, data []byte, mimeType string) (string, error)
}

// IAuthService defines the interface for credential operations
type IAuthService interface {
	Create(ctx context.Context, username, password string) (uuid.UUID, error)
	Verify(ctx context.Context, username, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// IMealService defines the interface for meal persistence
type IMealService interface {
	Save(ctx context.Context, userID uuid.UUID, mealName string, foods []types.FoodItem, totalCalories types.Calories, imageData string) (uuid.UUID, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Meal, error)
	Delete(ctx context.Context, mealID, userID uuid.UUID) (bool, error)
}

var (
	_ VisionAnalyzer = (*VisionService)(nil)
	_ ImageStore     = (*InlineImageStore)(nil)
	_ ImageStore     = (*S3ImageStore)(nil)
	_ IAuthService   = (*AuthService)(nil)
	_ IMealService   = (*MealService)(nil)
)
