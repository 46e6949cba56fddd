/**
 * HTTP 服务应用
 * @author: sun977
 * @date: 2026.02.14
 * @description: 负责组装路由与 http.Server，提供启动与优雅关闭
 */

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"neoport/internal/app/server/router"
	"neoport/internal/config"
	"neoport/internal/core/scanner/port"
	"neoport/internal/pkg/logger"
)

// App HTTP 服务应用
type App struct {
	router     *router.Router
	httpServer *http.Server
	config     *config.Config
	listener   net.Listener

	// 所有请求上下文的父上下文，强制关闭时取消在途扫描
	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// NewApp 创建 HTTP 服务应用
func NewApp(cfg *config.Config, scheduler *port.Scheduler) *App {
	r := router.NewRouter(cfg, scheduler)
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &App{
		router: r,
		httpServer: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      r.Engine(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			BaseContext: func(net.Listener) context.Context {
				return baseCtx
			},
		},
		config:     cfg,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}
}

// GetRouter 获取路由器实例
func (a *App) GetRouter() *router.Router {
	return a.router
}

// Addr 实际监听地址，Start 之前为 nil
func (a *App) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Start 监听端口并在后台提供服务
// 端口占用等错误同步返回
func (a *App) Start() error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.httpServer.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogSystemEvent("server", "serve", err.Error(), logger.ErrorLevel, nil)
		}
	}()

	logger.LogSystemEvent("server", "start", "HTTP server started", logger.InfoLevel, map[string]interface{}{
		"address": ln.Addr().String(),
		"mode":    a.config.Server.Mode,
	})
	return nil
}

// Stop 优雅关闭：先等待在途请求结束，ctx 到期后取消在途扫描并强制关闭连接
func (a *App) Stop(ctx context.Context) error {
	defer a.baseCancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.baseCancel()
		_ = a.httpServer.Close()
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	logger.LogSystemEvent("server", "stop", "HTTP server stopped", logger.InfoLevel, nil)
	return nil
}
