package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FoodItem is a single identified food inside a meal
type FoodItem struct {
	Name     string   `json:"name"`
	Portion  string   `json:"portion"`
	Calories Calories `json:"calories"`
}

// UnmarshalJSON accepts any JSON type for name and portion. A bare string
// is taken as the food's name.
func (f *FoodItem) UnmarshalJSON(data []byte) error {
	var fields struct {
		Name     json.RawMessage `json:"name"`
		Portion  json.RawMessage `json:"portion"`
		Calories Calories        `json:"calories"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		*f = FoodItem{Name: looseString(data)}
		return nil
	}
	*f = FoodItem{
		Name:     looseString(fields.Name),
		Portion:  looseString(fields.Portion),
		Calories: fields.Calories,
	}
	return nil
}

// Analysis is the structured result of analysing a meal photo
type Analysis struct {
	Foods         []FoodItem `json:"foods"`
	TotalCalories Calories   `json:"total_calories"`
}

// ItemEstimate is the structured result of re-estimating one food
type ItemEstimate struct {
	Portion  string   `json:"portion"`
	Calories Calories `json:"calories"`
}

// UnmarshalJSON accepts any JSON type for the portion
func (e *ItemEstimate) UnmarshalJSON(data []byte) error {
	var fields struct {
		Portion  json.RawMessage `json:"portion"`
		Calories Calories        `json:"calories"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*e = ItemEstimate{Portion: looseString(fields.Portion), Calories: fields.Calories}
	return nil
}

// looseString renders a JSON value as text: strings unquoted, null empty and
// anything else as its JSON source.
func looseString(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return text
}

// SumCalories adds up the calories of every food item
func SumCalories(foods []FoodItem) Calories {
	var total Calories
	for _, f := range foods {
		total += f.Calories
	}
	return total
}

// Calories is an integer calorie count that tolerates the loose shapes a
// model may produce: numbers, floats, numeric strings and strings such as
// "250 kcal" or "about 300".
type Calories int

// MaxCalories bounds any single calorie value in either direction
const MaxCalories = 1_000_000

// CaloriesFromFloat rounds f and clamps it to [-MaxCalories, MaxCalories]
func CaloriesFromFloat(f float64) Calories {
	switch {
	case math.IsNaN(f):
		return 0
	case f > MaxCalories:
		return MaxCalories
	case f < -MaxCalories:
		return -MaxCalories
	}
	return Calories(math.Round(f))
}

// UnmarshalJSON never fails: values with no usable number become 0
func (c *Calories) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*c = CaloriesFromFloat(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if n, err := parseCalorieString(str); err == nil {
			*c = n
			return nil
		}
	}

	*c = 0
	return nil
}

func parseCalorieString(s string) (Calories, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	// Take the first run of digits (with an optional decimal part).
	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return 0, fmt.Errorf("invalid calories format: %q", s)
	}
	end := start
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || s[end] == ',') {
		end++
	}
	digits := strings.ReplaceAll(s[start:end], ",", "")
	num, err := strconv.ParseFloat(strings.TrimSuffix(digits, "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid calories format: %q", s)
	}
	if start > 0 && s[start-1] == '-' {
		num = -num
	}
	return CaloriesFromFloat(num), nil
}
