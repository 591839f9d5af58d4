package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes one line per request. Errors attached with c.Error and the
// X-Trace-ID response header are included when present.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		event = event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("query", c.Request.URL.RawQuery).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP())
		if traceID := c.Writer.Header().Get("X-Trace-ID"); traceID != "" {
			event = event.Str("trace_id", traceID)
		}
		if len(c.Errors) > 0 {
			event = event.Err(c.Errors.Last().Err)
		}
		event.Msg("request")
	}
}
