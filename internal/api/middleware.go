// internal/api/middleware.go
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Corphon/LessonPlanner/internal/ratelimit"
	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or mints one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLogMiddleware writes one structured line per request.
func AccessLogMiddleware(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RateLimitMiddleware admits requests through counter, keyed by keyFunc.
// Counter failures let the request through.
func RateLimitMiddleware(counter ratelimit.Counter, keyFunc func(*gin.Context) string, logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		decision, err := counter.CheckAndIncrement(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limit counter unavailable", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", decision.Reset.Unix()))

		if !decision.Allowed {
			NewResponseHelper().Error(c, http.StatusTooManyRequests, ErrorRateLimited,
				"Demasiadas solicitudes, intenta nuevamente más tarde")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimitByCaller keys on the first X-Forwarded-For hop, falling back
// to the client IP.
func RateLimitByCaller(counter ratelimit.Counter, logger *utils.Logger) gin.HandlerFunc {
	return RateLimitMiddleware(counter, callerKey, logger)
}

func callerKey(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	return c.ClientIP()
}

// corsMiddleware allows any origin; the form is served from elsewhere.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-Task-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Task-ID, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
