package port

import (
	"context"
	"fmt"
	"time"

	"neoport/internal/core/lib/network/dialer"
	"neoport/internal/core/model"
)

const (
	ProberName     = "tcp_connect_prober"
	DefaultTimeout = 1 * time.Second
)

// Prober 单端口探测接口
// 实现必须可并发调用，且所有失败都转换为结果数据，不返回 error
type Prober interface {
	Probe(ctx context.Context, target model.Target, port int, timeout time.Duration) model.ProbeOutcome
}

// ProberFunc 函数适配器，方便测试注入
type ProberFunc func(ctx context.Context, target model.Target, port int, timeout time.Duration) model.ProbeOutcome

func (f ProberFunc) Probe(ctx context.Context, target model.Target, port int, timeout time.Duration) model.ProbeOutcome {
	return f(ctx, target, port, timeout)
}

// TCPProber TCP Connect 探测器
// 三次握手成功即判定开放，随即关闭连接，不交换任何数据
type TCPProber struct {
	dialer dialer.Dialer
}

// NewTCPProber d 为 nil 时使用全局拨号器
func NewTCPProber(d dialer.Dialer) *TCPProber {
	if d == nil {
		d = dialer.Get()
	}
	return &TCPProber{dialer: d}
}

func (p *TCPProber) Name() string {
	return ProberName
}

func (p *TCPProber) Probe(ctx context.Context, target model.Target, port int, timeout time.Duration) model.ProbeOutcome {
	if !model.ValidPort(port) {
		return model.Errored(fmt.Sprintf("invalid port %d", port), 0)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// 截止时间 = 开始时间 + timeout，超时结果不会早于 timeout
	start := time.Now()
	dialCtx, cancel := context.WithDeadline(ctx, start.Add(timeout))
	defer cancel()

	conn, err := p.dialer.DialContext(dialCtx, "tcp", target.Address(port))
	rtt := time.Since(start)
	if err != nil {
		return classifyDialError(ctx, err, rtt)
	}
	_ = conn.Close()

	return model.Open(rtt)
}
