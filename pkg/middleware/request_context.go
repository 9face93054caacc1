package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"videogen-service/pkg/logger"
	"videogen-service/pkg/metrics"
)

const (
	// ContextKeyUserUUID 请求方身份
	ContextKeyUserUUID = "user_uuid"
	// ContextKeyRequestID 请求ID
	ContextKeyRequestID = "request_id"
)

// RequestContextMiddleware 注入 request_id，并记录访问日志和请求指标。
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
		logger.Debug("HTTP request handled", map[string]interface{}{
			"request_id": reqID,
			"method":     c.Request.Method,
			"route":      route,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
	}
}

// RequesterUUID 读取已认证的请求方
func RequesterUUID(c *gin.Context) string {
	return c.GetString(ContextKeyUserUUID)
}
