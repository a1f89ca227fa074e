package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calorieking/backend/internal/types"
)

// DefaultMealName is used when a meal is saved without a name
const DefaultMealName = "Untitled Meal"

// FoodItems stores a meal's foods as JSON text
type FoodItems []types.FoodItem

// Value implements the driver.Valuer interface
func (f FoodItems) Value() (driver.Value, error) {
	if len(f) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (f *FoodItems) Scan(value interface{}) error {
	if value == nil {
		*f = FoodItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported foods column type %T", value)
	}

	return json.Unmarshal(bytes, f)
}

type Meal struct {
	ID            uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"-"`
	User          *User          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MealName      string         `gorm:"size:255" json:"meal_name"`
	Foods         FoodItems      `gorm:"type:text;not null" json:"foods"`
	TotalCalories types.Calories `gorm:"not null" json:"total_calories"`
	ImageData     string         `gorm:"type:text" json:"image_data,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns an ID and fills defaults on new meals
func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.MealName == "" {
		m.MealName = DefaultMealName
	}
	if m.Foods == nil {
		m.Foods = FoodItems{}
	}
	return nil
}
