// 结构化日志条目
package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
// 返回格式："2006-01-02 15:04:05.000"
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000")
}

// NowFormatted 返回当前时间的格式化字符串
func NowFormatted() string {
	return FormatTimestamp(time.Now())
}

// LogType 日志类型枚举
type LogType string

const (
	// AccessLog 访问日志 - 记录HTTP请求
	AccessLog LogType = "access"
	// SystemLog 系统日志 - 记录启动、关闭、配置重载
	SystemLog LogType = "system"
	// ScanLog 扫描日志 - 记录扫描执行情况
	ScanLog LogType = "scan"
)

// AccessLogEntry 访问日志条目结构
type AccessLogEntry struct {
	Method       string `json:"method"`        // HTTP方法
	Path         string `json:"path"`          // 请求路径
	Query        string `json:"query"`         // 查询参数
	StatusCode   int    `json:"status_code"`   // 响应状态码
	ResponseTime int64  `json:"response_time"` // 响应时间(毫秒)
	ClientIP     string `json:"client_ip"`     // 客户端IP
	UserAgent    string `json:"user_agent"`    // 用户代理
	RequestID    string `json:"request_id"`    // 请求追踪ID
	RequestSize  int64  `json:"request_size"`  // 请求大小
	ResponseSize int64  `json:"response_size"` // 响应大小
}

// ScanLogEntry 扫描日志条目结构
type ScanLogEntry struct {
	ScanID   string `json:"scan_id"`   // 扫描ID
	ScanType string `json:"scan_type"` // 扫描类型
	Target   string `json:"target"`    // 扫描目标
	Status   string `json:"status"`    // 扫描状态（running, completed, cancelled, fatal）
	Progress int    `json:"progress"`  // 扫描进度（0-100）
	Result   string `json:"result"`    // 扫描结果摘要
	Duration int64  `json:"duration"`  // 扫描耗时（毫秒）
}

// LogAccessRequest 记录HTTP访问日志
func LogAccessRequest(c *gin.Context, startTime time.Time, requestID string) {
	if LoggerInstance == nil {
		return
	}

	entry := AccessLogEntry{
		Method:       c.Request.Method,
		Path:         c.Request.URL.Path,
		Query:        c.Request.URL.RawQuery,
		StatusCode:   c.Writer.Status(),
		ResponseTime: time.Since(startTime).Milliseconds(),
		ClientIP:     c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		RequestID:    requestID,
		RequestSize:  c.Request.ContentLength,
		ResponseSize: int64(c.Writer.Size()),
	}

	fields := logrus.Fields{
		"type":          AccessLog,
		"method":        entry.Method,
		"path":          entry.Path,
		"query":         entry.Query,
		"status_code":   entry.StatusCode,
		"response_time": entry.ResponseTime,
		"client_ip":     entry.ClientIP,
		"user_agent":    entry.UserAgent,
		"request_id":    entry.RequestID,
		"request_size":  entry.RequestSize,
		"response_size": entry.ResponseSize,
	}

	switch {
	case entry.StatusCode >= 500:
		LoggerInstance.logger.WithFields(fields).Error("HTTP request failed")
	case entry.StatusCode >= 400:
		LoggerInstance.logger.WithFields(fields).Warn("HTTP request rejected")
	default:
		LoggerInstance.logger.WithFields(fields).Info("HTTP request processed")
	}
}

// LogSystemEvent 记录系统事件日志
// 用于记录服务启动、关闭、配置重载等事件
func LogSystemEvent(component, event, message string, level LogLevel, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":      SystemLog,
		"component": component,
		"event":     event,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Log(toLogrusLevel(level), fmt.Sprintf("System event: %s - %s: %s", component, event, message))
}

// LogScanOperation 记录扫描操作日志
// 运行中的进度走 debug，终态按结果选择级别
func LogScanOperation(scanID, scanType, target, status string, progress int, result string, duration int64, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	entry := ScanLogEntry{
		ScanID:   scanID,
		ScanType: scanType,
		Target:   target,
		Status:   status,
		Progress: progress,
		Result:   result,
		Duration: duration,
	}

	fields := logrus.Fields{
		"type":      ScanLog,
		"scan_id":   entry.ScanID,
		"scan_type": entry.ScanType,
		"target":    entry.Target,
		"status":    entry.Status,
		"progress":  entry.Progress,
		"result":    entry.Result,
		"duration":  entry.Duration,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	switch status {
	case "completed":
		LoggerInstance.logger.WithFields(fields).Info(fmt.Sprintf("Scan completed: %s on %s", scanType, target))
	case "cancelled":
		LoggerInstance.logger.WithFields(fields).Warn(fmt.Sprintf("Scan cancelled: %s on %s", scanType, target))
	case "fatal":
		LoggerInstance.logger.WithFields(fields).Error(fmt.Sprintf("Scan failed: %s on %s", scanType, target))
	case "running":
		LoggerInstance.logger.WithFields(fields).Debug(fmt.Sprintf("Scan running: %s on %s (%d%%)", scanType, target, progress))
	default:
		LoggerInstance.logger.WithFields(fields).Info(fmt.Sprintf("Scan %s: %s on %s", status, scanType, target))
	}
}

// LogLevel 日志级别类型，封装logrus.Level避免调用方直接依赖logrus
type LogLevel int

const (
	// DebugLevel 调试级别
	DebugLevel LogLevel = iota
	// InfoLevel 信息级别
	InfoLevel
	// WarnLevel 警告级别
	WarnLevel
	// ErrorLevel 错误级别
	ErrorLevel
)

// toLogrusLevel 将封装的LogLevel转换为logrus.Level
func toLogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
