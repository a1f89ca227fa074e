package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/internal/middleware"
	"github.com/calorieking/backend/internal/service"
	"github.com/calorieking/backend/internal/types"
)

// SessionManager issues and revokes session tokens
type SessionManager interface {
	Issue(principal types.Principal) (string, *types.SessionClaims, error)
	Revoke(ctx context.Context, token string) error
	TTL() time.Duration
}

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	auth     service.IAuthService
	sessions SessionManager
	cookies  *CookieHelper
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewAuthHandler(auth service.IAuthService, sessions SessionManager, cookies *CookieHelper, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		cookies:  cookies,
		validate: validator.New(),
		log:      log.WithField("handler", "auth"),
	}
}

// Register creates an account and logs the new user in
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, msgCredentialsMissing)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := h.validate.Struct(req); err != nil {
		badRequest(c, credentialsMessage(err))
		return
	}

	userID, err := h.auth.Create(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.startSession(c, types.Principal{UserID: userID, Username: req.Username})
}

// Login verifies credentials and establishes a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, msgCredentialsMissing)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := h.validate.Struct(req); err != nil {
		badRequest(c, msgCredentialsMissing)
		return
	}

	user, err := h.auth.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.startSession(c, types.Principal{UserID: user.ID, Username: user.Username})
}

// Logout revokes the caller's session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
			h.log.WithError(err).Warn("Failed to revoke session")
		}
	}
	h.cookies.ClearSession(c)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CurrentUser reports whether the caller is logged in
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "username": principal.Username})
}

func (h *AuthHandler) startSession(c *gin.Context, principal types.Principal) {
	token, _, err := h.sessions.Issue(principal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.cookies.SetSession(c, token, h.sessions.TTL())

	c.JSON(http.StatusOK, gin.H{"success": true, "username": principal.Username})
}
