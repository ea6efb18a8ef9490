package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/carewatch-api/pkg/logger"
)

// Logger returns a middleware that logs HTTP requests. Bodies are never logged:
// they carry passwords, phone numbers and medical notes.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		event := log.ZL.Info()
		msg := "Request processed"
		switch {
		case statusCode >= 500:
			event = log.ZL.Error()
			msg = "Server error"
		case statusCode >= 400:
			event = log.ZL.Warn()
			msg = "Client error"
		}

		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", statusCode).
			Dur("duration", latency).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
