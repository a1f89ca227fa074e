package types

// CredentialsRequest is the body of the register endpoint
type CredentialsRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=80"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the body of the login endpoint
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ReanalyzeItemRequest is the body of the single-item re-estimate endpoint
type ReanalyzeItemRequest struct {
	FoodName string `json:"food_name" form:"food_name" validate:"required,max=200"`
	Portion  string `json:"portion" form:"portion" validate:"max=200"`
}

// AnalyzeResponse is returned by the analyze endpoint
type AnalyzeResponse struct {
	Foods         []FoodItem `json:"foods"`
	TotalCalories Calories   `json:"total_calories"`
	Saved         bool       `json:"saved"`
	MealID        string     `json:"meal_id,omitempty"`
	SaveError     string     `json:"save_error,omitempty"`
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
