package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"homefinder-backend/internal/infrastructure/metrics"
)

// Metrics records request count and latency per matched route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
