package model

import (
	"net"
	"net/netip"
	"strconv"
)

// Target 已解析的扫描目标
// 核心层不做 DNS 解析，Host 只用于展示
type Target struct {
	Host string     `json:"host"`
	Addr netip.Addr `json:"addr"`
}

func NewTarget(host string, addr netip.Addr) Target {
	addr = addr.Unmap()
	if host == "" {
		host = addr.String()
	}
	return Target{Host: host, Addr: addr}
}

// IsValid 地址是否可用
func (t Target) IsValid() bool {
	return t.Addr.IsValid()
}

// Address 拼接拨号地址 (IPv6 自动加方括号)
func (t Target) Address(port int) string {
	return net.JoinHostPort(t.Addr.String(), strconv.Itoa(port))
}

func (t Target) String() string {
	if t.Host == "" || t.Host == t.Addr.String() {
		return t.Addr.String()
	}
	return t.Host + " (" + t.Addr.String() + ")"
}
