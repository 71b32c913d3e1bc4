package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/httputil"
)

// ErrorHandler is the single place errors become client responses. Handlers
// push errors into the gin context; this middleware translates the last one
// into the failure envelope using the application taxonomy.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(RequestIDKey)

		for _, e := range c.Errors {
			appErr := apperrors.FromError(e.Err)
			evt := log.Warn()
			if appErr.StatusCode() >= 500 {
				evt = log.Error()
			}
			evt.
				Err(e.Err).
				Str("request_id", requestID).
				Str("kind", string(appErr.Kind)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}
