package dialer

import (
	"context"
	"net"
)

// Dialer 网络连接器接口
// 探测器只依赖这个接口，直连/代理/测试桩都通过它注入
type Dialer interface {
	// DialContext 建立连接，ctx 的截止时间即本次连接的超时
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// DefaultDialer 直连拨号器
// 不设置 net.Dialer.Timeout，连接超时只由调用方 ctx 的截止时间决定，
// 否则每次探测自带的超时会被这里更早的固定值截断
type DefaultDialer struct {
	dialer *net.Dialer
}

func NewDefaultDialer() *DefaultDialer {
	return &DefaultDialer{dialer: &net.Dialer{}}
}

func (d *DefaultDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return d.dialer.DialContext(ctx, network, address)
}

// New 根据代理地址选择拨号器，proxyAddr 为空时直连
func New(proxyAddr string) (Dialer, error) {
	if proxyAddr == "" {
		return NewDefaultDialer(), nil
	}
	return NewProxyDialer(proxyAddr)
}
