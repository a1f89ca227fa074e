package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/internal/types"
)

const (
	// SessionCookieName is the cookie carrying the session token
	SessionCookieName = "calorie_king_session"

	principalKey = "principal"
	tokenKey     = "session_token"
)

// SessionValidator resolves a session token to its principal
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*types.Principal, error)
}

// Authenticate attaches the caller's principal to the context when a valid
// session is presented. Requests without one continue anonymously.
func Authenticate(validator SessionValidator, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).WithField("path", c.Request.URL.Path).Debug("Ignoring invalid session")
			c.Next()
			return
		}

		c.Set(principalKey, principal)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireAuth rejects anonymous callers
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Authentication required"})
			return
		}
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any
func PrincipalFromContext(c *gin.Context) (*types.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*types.Principal)
	return principal, ok && principal != nil
}

// SessionToken returns the session token from the cookie or a Bearer header
func SessionToken(c *gin.Context) string {
	if token, ok := c.Get(tokenKey); ok {
		return token.(string)
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
