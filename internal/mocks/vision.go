package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/calorieking/backend/internal/models"
	"github.com/calorieking/backend/internal/types"
)

// MockVisionAnalyzer is a mock implementation of the VisionAnalyzer interface
type MockVisionAnalyzer struct {
	mock.Mock
}

func (m *MockVisionAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, image, mimeType)
	return args.String(0), args.Error(1)
}

func (m *MockVisionAnalyzer) Reanalyze(ctx context.Context, foodName, portion string) (string, error) {
	args := m.Called(ctx, foodName, portion)
	return args.String(0), args.Error(1)
}

// MockImageStore is a mock implementation of the ImageStore interface
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Store(ctx context.Context, userID uuid.UUID, data []byte, mimeType string) (string, error) {
	args := m.Called(ctx, userID, data, mimeType)
	return args.String(0), args.Error(1)
}

// MockMealService is a mock implementation of the IMealService interface
type MockMealService struct {
	mock.Mock
}

func (m *MockMealService) Save(ctx context.Context, userID uuid.UUID, mealName string, foods []types.FoodItem, totalCalories types.Calories, imageData string) (uuid.UUID, error) {
	args := m.Called(ctx, userID, mealName, foods, totalCalories, imageData)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockMealService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Meal, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Meal), args.Error(1)
}

func (m *MockMealService) Delete(ctx context.Context, mealID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, mealID, userID)
	return args.Bool(0), args.Error(1)
}
