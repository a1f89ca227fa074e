package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calorieking/backend/internal/middleware"
)

// CookieHelper manages the session cookie
type CookieHelper struct {
	secure bool
}

func NewCookieHelper(secure bool) *CookieHelper {
	return &CookieHelper{secure: secure}
}

// SetSession stores the session token in an HttpOnly cookie
func (h *CookieHelper) SetSession(c *gin.Context, token string, ttl time.Duration) {
	h.setCookie(c, token, int(ttl.Seconds()))
}

// ClearSession removes the session cookie
func (h *CookieHelper) ClearSession(c *gin.Context) {
	h.setCookie(c, "", -1)
}

func (h *CookieHelper) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, value, maxAge, "/", "", h.secure, true)
}
