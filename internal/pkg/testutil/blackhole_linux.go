//go:build linux

/**
 * 测试辅助:丢包端口
 * @author: sun977
 * @date: 2026.02.18
 * @description: 在回环地址上制造一个静默丢弃 SYN 的端口，用真实网络栈验证超时行为
 */

package testutil

import (
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// BlackholeAddr 返回一个会静默丢弃新连接的 127.0.0.1 地址
// 监听队列长度为 0，填满 accept 队列后内核直接丢弃后续 SYN
func BlackholeAddr(t testing.TB) string {
	t.Helper()

	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_STREAM, 0)
	require.NoError(t, err)
	t.Cleanup(func() { syscall.Close(fd) })

	require.NoError(t, syscall.Bind(fd, &syscall.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}))
	require.NoError(t, syscall.Listen(fd, 0))

	sa, err := syscall.Getsockname(fd)
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", sa.(*syscall.SockaddrInet4).Port)

	for i := 0; i < 16; i++ {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err != nil {
			// 队列已满
			return addr
		}
		t.Cleanup(func() { conn.Close() })
	}
	t.Skip("accept queue never filled, cannot simulate dropped SYN")
	return ""
}
