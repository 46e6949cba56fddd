package dialer

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/net/proxy"
)

// ProxyDialer SOCKS5 代理拨号器
// 经代理做 connect 扫描时，refused 由代理以错误回包的形式返回
type ProxyDialer struct {
	ProxyURL *url.URL
	forward  proxy.Dialer
}

func NewProxyDialer(proxyAddr string) (*ProxyDialer, error) {
	u, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy address: %w", err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		// 原始 TCP 只支持 SOCKS5，HTTP CONNECT 不在这里实现
		return nil, fmt.Errorf("unsupported proxy scheme: %q (only socks5 is supported for raw tcp)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy address: missing host in %q", proxyAddr)
	}

	var auth *proxy.Auth
	if u.User != nil {
		auth = &proxy.Auth{User: u.User.Username()}
		if p, ok := u.User.Password(); ok {
			auth.Password = p
		}
	}

	// 到代理的连接同样由 ctx 控制超时，不另设固定值
	forward, err := proxy.SOCKS5("tcp", u.Host, auth, &net.Dialer{})
	if err != nil {
		return nil, fmt.Errorf("failed to create socks5 dialer: %w", err)
	}

	return &ProxyDialer{
		ProxyURL: u,
		forward:  forward,
	}, nil
}

func (d *ProxyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := d.forward.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	// 不支持 context 的实现：goroutine + select 模拟
	type dialResult struct {
		conn net.Conn
		err  error
	}
	ch := make(chan dialResult, 1)
	go func() {
		conn, err := d.forward.Dial(network, address)
		ch <- dialResult{conn: conn, err: err}
	}()

	select {
	case <-ctx.Done():
		// 迟到的连接要关掉
		go func() {
			if res := <-ch; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case res := <-ch:
		return res.conn, res.err
	}
}
