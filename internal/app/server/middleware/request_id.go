/**
 * 请求ID中间件
 * @author: sun977
 * @date: 2026.02.14
 * @description: 透传或生成 X-Request-ID，便于日志追踪
 */
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 请求ID头
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey gin 上下文中的键
	RequestIDKey = "request_id"
)

// RequestID 请求ID中间件
// 已有请求ID (来自负载均衡或代理) 时沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID 取当前请求的ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
