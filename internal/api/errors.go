package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/internal/llmjson"
	"github.com/calorieking/backend/internal/service"
	"github.com/calorieking/backend/internal/types"
)

const (
	msgAuthRequired       = "Authentication required"
	msgInvalidCredentials = "Invalid username or password"
	msgCredentialsMissing = "Username and password required"
	msgPasswordTooShort   = "Password must be at least 6 characters"
	msgPasswordTooLong    = "Password must be at most 72 bytes"
	msgUsernameTooLong    = "Username must be at most 80 characters"
	msgUsernameExists     = "Username already exists"
	msgNoImage            = "No image provided"
	msgFoodNameRequired   = "Food name required"
	msgFoodNameTooLong    = "Food name and portion must be at most 200 characters"
	msgMealNotFound       = "Meal not found"
	msgAnalyzeFailed      = "Failed to analyze image"
	msgParseFailed        = "Failed to parse AI response"
	msgInternal           = "Internal Server Error"
)

// respondError maps err onto the JSON error contract
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var (
		parseErr    *llmjson.ParseError
		upstreamErr *service.UpstreamError
	)

	switch {
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgUsernameExists})
	case errors.Is(err, service.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgPasswordTooLong})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: msgInvalidCredentials})
	case errors.As(err, &parseErr):
		log.WithError(parseErr.Err).WithField("raw", parseErr.Raw).Warn("Model output was not valid JSON")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: msgParseFailed, Details: parseErr.Err.Error()})
	case errors.As(err, &upstreamErr):
		log.WithError(upstreamErr).WithField("status", upstreamErr.StatusCode).Error("Vision analysis failed")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: msgAnalyzeFailed, Details: upstreamErr.Error()})
	default:
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: msgInternal})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: message})
}

// credentialsMessage turns validation failures on a CredentialsRequest into
// a user-facing message.
func credentialsMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgCredentialsMissing
	}
	for _, fe := range verrs {
		switch {
		case fe.Tag() == "required":
			return msgCredentialsMissing
		case fe.Field() == "Password" && fe.Tag() == "min":
			return msgPasswordTooShort
		case fe.Field() == "Password" && fe.Tag() == "max":
			return msgPasswordTooLong
		case fe.Field() == "Username" && fe.Tag() == "max":
			return msgUsernameTooLong
		}
	}
	return msgCredentialsMissing
}

// reanalyzeMessage turns validation failures on a ReanalyzeItemRequest into
// a user-facing message.
func reanalyzeMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "max" {
				return msgFoodNameTooLong
			}
		}
	}
	return msgFoodNameRequired
}
