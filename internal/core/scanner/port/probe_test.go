package port

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"os"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neoport/internal/core/lib/network/dialer"
	"neoport/internal/core/model"
)

// dialFunc 测试用拨号器
type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func (f dialFunc) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return f(ctx, network, addr)
}

// blackhole 模拟丢包：一直阻塞到 ctx 结束
func blackhole(ctx context.Context, _, _ string) (net.Conn, error) {
	<-ctx.Done()
	return nil, &net.OpError{Op: "dial", Net: "tcp", Err: ctx.Err()}
}

var localhost = model.NewTarget("localhost", netip.MustParseAddr("127.0.0.1"))

func listenPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port
}

// closedPort 拿一个空闲端口再关掉，连接会被拒绝
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestTCPProber_Open(t *testing.T) {
	port := listenPort(t)
	p := NewTCPProber(dialer.NewDefaultDialer())

	out := p.Probe(context.Background(), localhost, port, time.Second)
	assert.Equal(t, model.OutcomeOpen, out.Kind)
	assert.Greater(t, out.RTT, time.Duration(0))
	assert.Empty(t, out.Service)
}

func TestTCPProber_Refused(t *testing.T) {
	port := closedPort(t)
	p := NewTCPProber(dialer.NewDefaultDialer())

	out := p.Probe(context.Background(), localhost, port, time.Second)
	assert.Equal(t, model.OutcomeClosed, out.Kind)
	assert.Equal(t, model.ReasonRefused, out.Reason)
}

func TestTCPProber_TimedOut(t *testing.T) {
	p := NewTCPProber(dialFunc(blackhole))

	timeout := 100 * time.Millisecond
	start := time.Now()
	out := p.Probe(context.Background(), localhost, 9999, timeout)

	assert.Equal(t, model.OutcomeTimedOut, out.Kind)
	assert.GreaterOrEqual(t, time.Since(start), timeout)
	assert.GreaterOrEqual(t, out.RTT, timeout)
}

func TestTCPProber_Unreachable(t *testing.T) {
	p := NewTCPProber(dialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, &net.OpError{Op: "dial", Net: network, Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)}
	}))

	out := p.Probe(context.Background(), localhost, 80, time.Second)
	assert.Equal(t, model.OutcomeClosed, out.Kind)
	assert.Equal(t, model.ReasonUnreachable, out.Reason)
}

func TestTCPProber_LocalResourceError(t *testing.T) {
	p := NewTCPProber(dialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, &net.OpError{Op: "dial", Net: network, Err: os.NewSyscallError("socket", syscall.EMFILE)}
	}))

	out := p.Probe(context.Background(), localhost, 80, time.Second)
	assert.Equal(t, model.OutcomeErrored, out.Kind)
	assert.Contains(t, out.Reason, "too many open files")
}

func TestTCPProber_InvalidPort(t *testing.T) {
	called := false
	p := NewTCPProber(dialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		called = true
		return nil, errors.New("unexpected")
	}))

	for _, port := range []int{0, -1, 65536} {
		out := p.Probe(context.Background(), localhost, port, time.Second)
		assert.Equal(t, model.OutcomeErrored, out.Kind, "port %d", port)
		assert.Contains(t, out.Reason, "invalid port")
	}
	assert.False(t, called)
}

func TestTCPProber_DialAddress(t *testing.T) {
	var got string
	p := NewTCPProber(dialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		got = addr
		return nil, syscall.ECONNREFUSED
	}))

	v6 := model.NewTarget("", netip.MustParseAddr("::1"))
	out := p.Probe(context.Background(), v6, 443, time.Second)
	assert.Equal(t, model.OutcomeClosed, out.Kind)
	assert.Equal(t, "[::1]:443", got)
}

func TestClassifyDialError(t *testing.T) {
	live := context.Background()
	dead, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		ctx    context.Context
		err    error
		kind   model.OutcomeKind
		reason string
	}{
		{"refused", live, syscall.ECONNREFUSED, model.OutcomeClosed, model.ReasonRefused},
		{"net unreachable", live, syscall.ENETUNREACH, model.OutcomeClosed, model.ReasonUnreachable},
		{"host down", live, syscall.EHOSTDOWN, model.OutcomeClosed, model.ReasonUnreachable},
		{"deadline", live, context.DeadlineExceeded, model.OutcomeTimedOut, ""},
		{"socks refused", live, errors.New("socks connect tcp 1.2.3.4:80: connection refused"), model.OutcomeClosed, model.ReasonRefused},
		{"socks no route", live, errors.New("socks connect: no route to host"), model.OutcomeClosed, model.ReasonUnreachable},
		{"aborted", dead, context.Canceled, model.OutcomeErrored, ReasonAborted},
		{"refused wins over abort", dead, syscall.ECONNREFUSED, model.OutcomeClosed, model.ReasonRefused},
		{"other", live, errors.New("boom"), model.OutcomeErrored, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := classifyDialError(tt.ctx, tt.err, time.Millisecond)
			assert.Equal(t, tt.kind, out.Kind)
			assert.Equal(t, tt.reason, out.Reason)
		})
	}
}

// portDialer 按端口号分流，用于在本机模拟开放/关闭/丢包的混合场景
func portDialer(t *testing.T, open []int, dropped []int) dialer.Dialer {
	t.Helper()
	openAddr := net.JoinHostPort("127.0.0.1", strconv.Itoa(listenPort(t)))
	closedAddr := net.JoinHostPort("127.0.0.1", strconv.Itoa(closedPort(t)))
	direct := dialer.NewDefaultDialer()

	isIn := func(port int, set []int) bool {
		for _, p := range set {
			if p == port {
				return true
			}
		}
		return false
	}

	return dialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		_, ps, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		port, _ := strconv.Atoi(ps)
		switch {
		case isIn(port, open):
			return direct.DialContext(ctx, network, openAddr)
		case isIn(port, dropped):
			return blackhole(ctx, network, addr)
		default:
			return direct.DialContext(ctx, network, closedAddr)
		}
	})
}

func TestTCPProber_GlobalDialer(t *testing.T) {
	orig := dialer.Get()
	defer dialer.SetGlobalDialer(orig)

	called := false
	dialer.SetGlobalDialer(dialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		called = true
		return nil, &net.OpError{Op: "dial", Net: network, Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	}))

	out := NewTCPProber(nil).Probe(context.Background(), localhost, 80, time.Second)
	assert.True(t, called)
	assert.Equal(t, model.OutcomeClosed, out.Kind)
}
