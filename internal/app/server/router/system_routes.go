/**
 * 路由:主机状态路由
 * @author: sun977
 * @date: 2026.02.16
 * @description: 扫描主机的静态信息、负载与在途扫描数
 */
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neoport/internal/pkg/logger"
	"neoport/internal/pkg/monitor"
)

// setupSystemRoutes 设置主机状态路由
func (r *Router) setupSystemRoutes(apiGroup *gin.RouterGroup) {
	apiGroup.GET("/system", r.handleSystem)
}

// handleSystem 主机状态处理器
func (r *Router) handleSystem(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"host":         monitor.GetHostInfo(ctx),
		"metrics":      monitor.GetSystemMetrics(ctx),
		"active_scans": r.activeScans.Load(),
		"timestamp":    logger.NowFormatted(),
	})
}
