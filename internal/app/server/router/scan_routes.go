/**
 * 路由:端口扫描路由
 * @author: sun977
 * @date: 2026.02.14
 * @description: 同步端口扫描接口，请求上下文即取消信号 (客户端断开即取消扫描)
 */
package router

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"neoport/internal/app/server/middleware"
	"neoport/internal/core/model"
	"neoport/internal/core/options"
	"neoport/internal/core/pipeline"
	"neoport/internal/pkg/logger"
)

// StatusClientClosedRequest 客户端在扫描结束前断开
const StatusClientClosedRequest = 499

// ScanRequest 端口扫描请求体
// Concurrency、TimeoutMs 为 0 时取服务端配置
type ScanRequest struct {
	Target      string `json:"target" binding:"required"`
	Ports       []int  `json:"ports" binding:"required"`
	Concurrency int    `json:"concurrency"`
	TimeoutMs   int    `json:"timeout_ms"`
}

// setupScanRoutes 设置扫描路由
func (r *Router) setupScanRoutes(apiGroup *gin.RouterGroup) {
	apiGroup.POST("/scan", r.handleScan)
}

// handleScan 执行一次扫描并返回 ScanResult
func (r *Router) handleScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Ports) == 0 {
		badRequest(c, errors.New("ports must not be empty"))
		return
	}
	if limit := r.config.Server.MaxPorts; limit > 0 && len(req.Ports) > limit {
		badRequest(c, fmt.Errorf("too many ports: %d > %d", len(req.Ports), limit))
		return
	}

	opts := options.NewPortScanOptions()
	opts.ApplyConfig(r.config, nil)
	opts.Target = req.Target
	opts.PortList = req.Ports
	if req.Concurrency != 0 {
		opts.Concurrency = req.Concurrency
	}
	if req.TimeoutMs != 0 {
		opts.Timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	if err := opts.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	scanCfg, err := opts.ToScanConfig(ctx)
	if err != nil {
		badRequest(c, err)
		return
	}

	r.activeScans.Add(1)
	defer r.activeScans.Add(-1)

	scan, err := r.scheduler.Run(ctx, scanCfg)
	if err != nil {
		if errors.Is(err, model.ErrInvalidConfig) {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	res, err := scan.Wait()
	switch res.State {
	case model.ScanStateFatal:
		logger.WithFields(map[string]interface{}{
			"scan_id":    scan.ID(),
			"request_id": middleware.GetRequestID(c),
			"error":      err,
		}).Error("Scan failed")
		c.JSON(http.StatusInternalServerError, res)
	case model.ScanStateCancelled:
		// 对端通常已断开，写回只为留下访问日志的状态码
		c.JSON(StatusClientClosedRequest, res)
	default:
		c.JSON(http.StatusOK, res)
	}
}

// badRequest 参数错误统一返回 400
func badRequest(c *gin.Context, err error) {
	status := http.StatusBadRequest
	kind := "invalid_request"
	if errors.Is(err, pipeline.ErrResolve) {
		kind = "resolve_failed"
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"kind":  kind,
	})
}
