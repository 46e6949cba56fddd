/**
 * 日志中间件
 * @author: sun977
 * @date: 2026.02.14
 * @description: 记录 HTTP 访问日志
 */
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"neoport/internal/pkg/logger"
)

// LoggingConfig 日志中间件配置
type LoggingConfig struct {
	// 跳过日志的路径
	SkipPaths []string
}

// DefaultLoggingConfig 默认跳过探活路径
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		SkipPaths: []string{"/health", "/ping"},
	}
}

// Logging 访问日志中间件，需在 RequestID 之后注册
func Logging(cfg *LoggingConfig) gin.HandlerFunc {
	if cfg == nil {
		cfg = DefaultLoggingConfig()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		logger.LogAccessRequest(c, start, GetRequestID(c))
	}
}
