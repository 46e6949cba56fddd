/**
 * 主机监控
 * @author: sun977
 * @date: 2026.02.16
 * @description: 采集扫描所在主机的静态信息与负载指标，供 HTTP 服务的 /api/v1/system 使用
 */

package monitor

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"neoport/internal/pkg/logger"
)

// cpuSampleInterval CPU 使用率的采样窗口
const cpuSampleInterval = 100 * time.Millisecond

// HostInfo 主机静态信息
type HostInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Arch            string `json:"arch"`
	CPUCores        int    `json:"cpu_cores"`
	MemoryTotal     uint64 `json:"memory_total"`
}

// SystemMetrics 系统负载
// 大并发扫描时主要关注 CPU 与网络收发
type SystemMetrics struct {
	CPUUsage         float64 `json:"cpu_usage"`
	MemoryUsage      float64 `json:"memory_usage"`
	NetworkBytesSent uint64  `json:"network_bytes_sent"`
	NetworkBytesRecv uint64  `json:"network_bytes_recv"`
	Goroutines       int     `json:"goroutines"`
}

// GetSystemMetrics 获取系统指标
// 单项采集失败只记日志，对应字段保持零值
func GetSystemMetrics(ctx context.Context) *SystemMetrics {
	metrics := &SystemMetrics{Goroutines: runtime.NumGoroutine()}

	cpuPercent, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false)
	if err != nil {
		warn("GetSystemMetrics", "cpu usage", err)
	} else if len(cpuPercent) > 0 {
		metrics.CPUUsage = cpuPercent[0]
	}

	vMem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		warn("GetSystemMetrics", "memory usage", err)
	} else {
		metrics.MemoryUsage = vMem.UsedPercent
	}

	// 所有网卡合计
	netIO, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		warn("GetSystemMetrics", "network stats", err)
	} else if len(netIO) > 0 {
		metrics.NetworkBytesSent = netIO[0].BytesSent
		metrics.NetworkBytesRecv = netIO[0].BytesRecv
	}

	return metrics
}

// GetHostInfo 获取主机静态信息
func GetHostInfo(ctx context.Context) *HostInfo {
	info := &HostInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUCores: runtime.NumCPU(),
	}

	hInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		warn("GetHostInfo", "host info", err)
	} else {
		info.Hostname = hInfo.Hostname
		info.Platform = hInfo.Platform
		info.PlatformVersion = hInfo.PlatformVersion
		info.KernelVersion = hInfo.KernelVersion
		if hInfo.OS != "" {
			info.OS = hInfo.OS
		}
		if hInfo.KernelArch != "" {
			info.Arch = hInfo.KernelArch
		}
	}

	if cores, err := cpu.CountsWithContext(ctx, false); err == nil && cores > 0 {
		info.CPUCores = cores
	}

	vMem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		warn("GetHostInfo", "memory info", err)
	} else {
		info.MemoryTotal = vMem.Total
	}

	return info
}

func warn(event, what string, err error) {
	logger.LogSystemEvent("monitor", event, "failed to get "+what+": "+err.Error(), logger.WarnLevel, nil)
}
