package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/logger"
)

// RequestLogger logs one line per request; 5xx at error and 4xx at warn
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		userID, _ := GetUserID(c)
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"user_id", userID,
		}

		log := logger.Get()
		switch {
		case status >= 500:
			log.Error("request failed", kv...)
		case status >= 400:
			log.Warn("request rejected", kv...)
		default:
			log.Info("request handled", kv...)
		}
	}
}
