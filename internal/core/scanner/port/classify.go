package port

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
	"time"

	"neoport/internal/core/model"
)

// ReasonAborted 扫描被取消导致的拨号中断，调度器会丢弃这类结果
const ReasonAborted = "probe aborted"

// classifyDialError 把拨号错误归类为 Closed / TimedOut / Errored
// parent 是探测的外层 context，用于区分"扫描被中止"和"单次超时"
func classifyDialError(parent context.Context, err error, rtt time.Duration) model.ProbeOutcome {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return model.Closed(model.ReasonRefused, rtt)
	case errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETDOWN),
		errors.Is(err, syscall.EHOSTDOWN):
		return model.Closed(model.ReasonUnreachable, rtt)
	}

	if parent.Err() != nil {
		return model.Errored(ReasonAborted, rtt)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return model.TimedOut(rtt)
	}

	// SOCKS5 代理和部分平台只给出文本错误
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "refused"):
		return model.Closed(model.ReasonRefused, rtt)
	case strings.Contains(msg, "network is unreachable"),
		strings.Contains(msg, "host unreachable"),
		strings.Contains(msg, "no route to host"),
		strings.Contains(msg, "host is down"):
		return model.Closed(model.ReasonUnreachable, rtt)
	}

	return model.Errored(err.Error(), rtt)
}
