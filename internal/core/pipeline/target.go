package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"neoport/internal/core/model"
	"neoport/internal/pkg/logger"
)

// ErrResolve 目标无法解析
var ErrResolve = errors.New("failed to resolve target")

// HostResolver 域名解析接口，默认使用 net.DefaultResolver
type HostResolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// ResolveTarget 把用户输入 (IP / 域名 / [IPv6]) 解析为单个扫描目标
// 域名有多个地址时优先取 IPv4
func ResolveTarget(ctx context.Context, input string) (model.Target, error) {
	return ResolveTargetWith(ctx, net.DefaultResolver, input)
}

// ResolveTargetWith 使用指定的解析器
func ResolveTargetWith(ctx context.Context, r HostResolver, input string) (model.Target, error) {
	host := strings.TrimSpace(input)
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return model.Target{}, fmt.Errorf("%w: empty target", ErrResolve)
	}

	// 1. IP 字面量
	if addr, err := netip.ParseAddr(host); err == nil {
		return model.NewTarget(host, addr), nil
	}

	// 2. 域名
	addrs, err := r.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return model.Target{}, fmt.Errorf("%w: %s: %v", ErrResolve, host, err)
	}
	if len(addrs) == 0 {
		return model.Target{}, fmt.Errorf("%w: %s: no address", ErrResolve, host)
	}

	chosen := addrs[0]
	for _, a := range addrs {
		if a.Unmap().Is4() {
			chosen = a
			break
		}
	}
	logger.Debugf("resolved %s -> %s (%d candidates)", host, chosen.Unmap(), len(addrs))

	return model.NewTarget(host, chosen), nil
}
