//go:build linux

package main

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neoport/internal/config"
	"neoport/internal/core/lib/network/dialer"
	"neoport/internal/core/model"
	"neoport/internal/pkg/testutil"
)

// 服务端的 scan.timeout 只是默认值，单次扫描可以给更长的超时
func TestNewScheduler_ScanTimeoutOverridesConfig(t *testing.T) {
	orig := dialer.Get()
	defer dialer.SetGlobalDialer(orig)

	_, ps, err := net.SplitHostPort(testutil.BlackholeAddr(t))
	require.NoError(t, err)
	p, err := strconv.Atoi(ps)
	require.NoError(t, err)

	sched, err := newScheduler(&config.ScanConfig{Concurrency: 1, Timeout: 200 * time.Millisecond})
	require.NoError(t, err)

	timeout := 1200 * time.Millisecond
	target := model.NewTarget("127.0.0.1", netip.MustParseAddr("127.0.0.1"))
	scan, err := sched.Run(context.Background(), model.NewScanConfig(target, []int{p}, 1, timeout))
	require.NoError(t, err)

	res, err := scan.Wait()
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, model.OutcomeTimedOut, res.Events[0].Outcome.Kind)
	assert.GreaterOrEqual(t, res.Events[0].Outcome.RTT, timeout)
}
