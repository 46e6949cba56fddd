package model

import (
	"fmt"
	"time"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// ValidPort 端口是否在 [1, 65535]
func ValidPort(port int) bool {
	return port >= MinPort && port <= MaxPort
}

// OutcomeKind 单个端口的探测结果类别
type OutcomeKind string

const (
	OutcomeOpen     OutcomeKind = "open"
	OutcomeClosed   OutcomeKind = "closed"
	OutcomeTimedOut OutcomeKind = "timeout"
	OutcomeErrored  OutcomeKind = "error"
)

// Closed 的内部原因，对外统一报告为 closed
const (
	ReasonRefused     = "refused"
	ReasonUnreachable = "unreachable"
)

// ProbeOutcome 一次探测的结果，创建后不再修改
type ProbeOutcome struct {
	Kind    OutcomeKind   `json:"kind"`
	Service string        `json:"service,omitempty"` // 仅 Open 有意义，可能为空
	Reason  string        `json:"reason,omitempty"`  // Closed: refused/unreachable; Errored: 可读原因
	RTT     time.Duration `json:"rtt,omitempty"`
}

func Open(rtt time.Duration) ProbeOutcome {
	return ProbeOutcome{Kind: OutcomeOpen, RTT: rtt}
}

func Closed(reason string, rtt time.Duration) ProbeOutcome {
	return ProbeOutcome{Kind: OutcomeClosed, Reason: reason, RTT: rtt}
}

func TimedOut(rtt time.Duration) ProbeOutcome {
	return ProbeOutcome{Kind: OutcomeTimedOut, RTT: rtt}
}

func Errored(reason string, rtt time.Duration) ProbeOutcome {
	return ProbeOutcome{Kind: OutcomeErrored, Reason: reason, RTT: rtt}
}

// WithService 返回带服务名注解的副本
func (o ProbeOutcome) WithService(name string) ProbeOutcome {
	o.Service = name
	return o
}

func (o ProbeOutcome) IsOpen() bool {
	return o.Kind == OutcomeOpen
}

func (o ProbeOutcome) String() string {
	switch o.Kind {
	case OutcomeOpen:
		if o.Service != "" {
			return fmt.Sprintf("open(%s)", o.Service)
		}
		return "open"
	case OutcomeClosed, OutcomeErrored:
		if o.Reason != "" {
			return fmt.Sprintf("%s(%s)", o.Kind, o.Reason)
		}
	}
	return string(o.Kind)
}

// PortEvent 按完成顺序交付给调用方的单条结果
// Seq 从 1 开始递增，用于测试中复现完成顺序
type PortEvent struct {
	Seq         uint64       `json:"seq"`
	Port        int          `json:"port"`
	Outcome     ProbeOutcome `json:"outcome"`
	CompletedAt time.Time    `json:"completed_at"`
}
