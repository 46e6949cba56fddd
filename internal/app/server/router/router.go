/**
 * 路由注册
 * @author: sun977
 * @date: 2026.02.14
 * @description: HTTP 服务路由注册，统一管理中间件与路由
 */
package router

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"neoport/internal/app/server/middleware"
	"neoport/internal/config"
	"neoport/internal/core/scanner/port"
	"neoport/internal/pkg/version"
)

// Router HTTP 路由器
type Router struct {
	engine    *gin.Engine
	config    *config.Config
	scheduler *port.Scheduler

	// 正在执行的扫描请求数
	activeScans atomic.Int64
}

// NewRouter 创建路由器
// cfg.Scan 提供请求未指定时的扫描默认值，cfg.Server 提供运行模式与端口上限
func NewRouter(cfg *config.Config, scheduler *port.Scheduler) *Router {
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:    gin.New(),
		config:    cfg,
		scheduler: scheduler,
	}
	r.registerRoutes()
	return r
}

// Engine 返回 gin 引擎 (http.Handler)
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// registerRoutes 注册路由
func (r *Router) registerRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logging(middleware.DefaultLoggingConfig()))

	r.setupHealthRoutes()

	apiGroup := r.engine.Group("/api/" + version.APIVersion)
	r.setupScanRoutes(apiGroup)
	r.setupSystemRoutes(apiGroup)
}
