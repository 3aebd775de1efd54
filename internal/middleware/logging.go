package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/metrics"
)

// RequestLogger logs every request after it completes.
// Client errors are logged at Warn, server errors at Error.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"user_id", GetUserID(c.Request.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err := c.Errors.Last(); err != nil {
			attrs = append(attrs, "error", err.Err)
		}

		switch {
		case status >= 500:
			slog.Error("Request failed", attrs...)
		case status >= 400:
			slog.Warn("Request rejected", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	}
}

// Instrument records request counts and latencies.
func Instrument(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
