package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/internal/llmjson"
	"github.com/calorieking/backend/internal/middleware"
	"github.com/calorieking/backend/internal/service"
	"github.com/calorieking/backend/internal/types"
)

// multipartOverhead leaves room for the non-file form fields
const multipartOverhead = 1 << 20

// MealHandler handles meal analysis and history endpoints
type MealHandler struct {
	vision         service.VisionAnalyzer
	meals          service.IMealService
	images         service.ImageStore
	maxUploadBytes int64
	validate       *validator.Validate
	log            logrus.FieldLogger
}

func NewMealHandler(vision service.VisionAnalyzer, meals service.IMealService, images service.ImageStore, maxUploadBytes int64, log logrus.FieldLogger) *MealHandler {
	return &MealHandler{
		vision:         vision,
		meals:          meals,
		images:         images,
		maxUploadBytes: maxUploadBytes,
		validate:       validator.New(),
		log:            log.WithField("handler", "meals"),
	}
}

// editedMeal holds the optional user corrections sent alongside a photo
type editedMeal struct {
	foods         []types.FoodItem
	hasFoods      bool
	totalCalories types.Calories
	hasTotal      bool
}

// Analyze runs a meal photo through the vision model and optionally saves it
func (h *MealHandler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			badRequest(c, h.tooLargeMessage())
			return
		}
		badRequest(c, msgNoImage)
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		badRequest(c, h.tooLargeMessage())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.log, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		respondError(c, h.log, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	if len(image) == 0 {
		badRequest(c, msgNoImage)
		return
	}

	edited, msg := parseEditedMeal(c)
	if msg != "" {
		badRequest(c, msg)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	raw, err := h.vision.Analyze(c.Request.Context(), image, mimeType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	analysis, err := llmjson.DecodeAnalysis(raw)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := types.AnalyzeResponse{
		Foods:         analysis.Foods,
		TotalCalories: analysis.TotalCalories,
	}

	principal, authenticated := middleware.PrincipalFromContext(c)
	if authenticated && isTruthy(c.PostForm("save_meal")) {
		foods, total := analysis.Foods, analysis.TotalCalories
		if edited.hasFoods {
			foods = edited.foods
			total = types.SumCalories(foods)
		}
		if edited.hasTotal {
			total = edited.totalCalories
		}

		imageData, err := h.images.Store(c.Request.Context(), principal.UserID, image, mimeType)
		if err != nil {
			h.log.WithError(err).WithField("user_id", principal.UserID).Warn("Failed to store meal image, saving without it")
			imageData = ""
		}

		mealID, err := h.meals.Save(c.Request.Context(), principal.UserID, c.PostForm("meal_name"), foods, total, imageData)
		if err != nil {
			h.log.WithError(err).WithField("user_id", principal.UserID).Error("Failed to save analyzed meal")
			resp.SaveError = "Failed to save meal"
		} else {
			resp.Saved = true
			resp.MealID = mealID.String()
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ReanalyzeItem re-estimates the portion and calories of one food
func (h *MealHandler) ReanalyzeItem(c *gin.Context) {
	var req types.ReanalyzeItemRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, msgFoodNameRequired)
		return
	}
	req.FoodName = strings.TrimSpace(req.FoodName)

	if err := h.validate.Struct(req); err != nil {
		badRequest(c, reanalyzeMessage(err))
		return
	}

	raw, err := h.vision.Reanalyze(c.Request.Context(), req.FoodName, req.Portion)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	estimate, err := llmjson.DecodeItemEstimate(raw)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, estimate)
}

// ListMeals returns the caller's meals, newest first
func (h *MealHandler) ListMeals(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: msgAuthRequired})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	meals, err := h.meals.ListForUser(c.Request.Context(), principal.UserID, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// DeleteMeal removes one of the caller's meals. Unknown IDs and meals owned
// by other users both yield 404.
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: msgAuthRequired})
		return
	}

	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: msgMealNotFound})
		return
	}

	deleted, err := h.meals.Delete(c.Request.Context(), mealID, principal.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: msgMealNotFound})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *MealHandler) tooLargeMessage() string {
	return fmt.Sprintf("Image too large (max %d bytes)", h.maxUploadBytes)
}

// parseEditedMeal reads foods_data and total_calories from the form. It
// returns a non-empty message when either is malformed.
func parseEditedMeal(c *gin.Context) (editedMeal, string) {
	var edited editedMeal

	if raw := strings.TrimSpace(c.PostForm("foods_data")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &edited.foods); err != nil {
			return edited, "Invalid foods_data"
		}
		if edited.foods == nil {
			edited.foods = []types.FoodItem{}
		}
		edited.hasFoods = true
	}

	if raw := strings.TrimSpace(c.PostForm("total_calories")); raw != "" {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return edited, "Invalid total_calories"
		}
		edited.totalCalories = types.CaloriesFromFloat(n)
		edited.hasTotal = true
	}

	return edited, ""
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}
