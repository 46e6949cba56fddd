/**
 * 扫描模型定义 (Core Domain)
 * @author: Sun977
 * @date: 2026.02.10
 * @description: 核心扫描配置与状态机。CLI 和 HTTP 两种入口最终都转换为 ScanConfig。
 */

package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig 扫描配置非法 (调用方输入问题，不是扫描失败)
var ErrInvalidConfig = errors.New("invalid scan config")

// ScanState 扫描生命周期状态
// Idle -> Running -> {Completed, Cancelled, Fatal}，终态不可再迁移
type ScanState string

const (
	ScanStateIdle      ScanState = "idle"
	ScanStateRunning   ScanState = "running"
	ScanStateCompleted ScanState = "completed"
	ScanStateCancelled ScanState = "cancelled"
	ScanStateFatal     ScanState = "fatal"
)

// Terminal 是否为终态
func (s ScanState) Terminal() bool {
	switch s {
	case ScanStateCompleted, ScanStateCancelled, ScanStateFatal:
		return true
	}
	return false
}

// ScanConfig 单次扫描的配置
// 由外部输入校验后构造一次，之后只读
type ScanConfig struct {
	Target      Target        `json:"target"`
	Ports       []int         `json:"ports"`       // 保持输入顺序，允许重复
	Concurrency int           `json:"concurrency"` // 同时在途的探测上限
	Timeout     time.Duration `json:"timeout"`     // 单次探测超时
}

// NewScanConfig 创建扫描配置
// ports 会被复制一份，调用方后续修改不影响扫描
func NewScanConfig(target Target, ports []int, concurrency int, timeout time.Duration) *ScanConfig {
	cp := make([]int, len(ports))
	copy(cp, ports)
	return &ScanConfig{
		Target:      target,
		Ports:       cp,
		Concurrency: concurrency,
		Timeout:     timeout,
	}
}

// Validate 校验配置
// 越界端口不在这里拒绝，扫描时按 Errored 结果处理
func (c *ScanConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if !c.Target.IsValid() {
		return fmt.Errorf("%w: target address is required", ErrInvalidConfig)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be > 0, got %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}
