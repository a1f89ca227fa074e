package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/internal/types"
)

// ErrorHandler recovers from panics and turns errors left on the context into
// a JSON error response.
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(logrus.Fields{
					"panic":  err,
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				}).Error("Recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			log.WithError(c.Errors.Last()).WithField("path", c.Request.URL.Path).Error("Unhandled request error")
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Internal Server Error"})
		}
	}
}
