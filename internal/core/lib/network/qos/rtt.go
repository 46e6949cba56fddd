package qos

import (
	"sync"
	"time"
)

const (
	defaultInitialRTO = 1 * time.Second
	minRTO            = 100 * time.Millisecond
	maxRTO            = 10 * time.Second
	alpha             = 0.125 // RFC 6298
	beta              = 0.25  // RFC 6298
)

// RttEstimator RFC 6298 的 SRTT/RTTVAR/RTO 估算
// 扫描报告用它汇总开放端口的连接耗时
type RttEstimator struct {
	mu      sync.RWMutex
	srtt    time.Duration
	rttvar  time.Duration
	rto     time.Duration
	samples int
}

func NewRttEstimator() *RttEstimator {
	return &RttEstimator{rto: defaultInitialRTO}
}

// Update 加入一次测量值，非正值忽略
func (e *RttEstimator) Update(rtt time.Duration) {
	if rtt <= 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.samples == 0 {
		// RFC 6298 2.2
		e.srtt = rtt
		e.rttvar = rtt / 2
	} else {
		// RFC 6298 2.3
		delta := e.srtt - rtt
		if delta < 0 {
			delta = -delta
		}
		e.rttvar = time.Duration((1-beta)*float64(e.rttvar) + beta*float64(delta))
		e.srtt = time.Duration((1-alpha)*float64(e.srtt) + alpha*float64(rtt))
	}
	e.samples++

	e.rto = e.srtt + 4*e.rttvar
	if e.rto < minRTO {
		e.rto = minRTO
	} else if e.rto > maxRTO {
		e.rto = maxRTO
	}
}

// Smoothed 平滑 RTT，没有样本时为 0
func (e *RttEstimator) Smoothed() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.srtt
}

// Timeout 当前建议的 RTO
func (e *RttEstimator) Timeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rto
}

func (e *RttEstimator) Samples() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.samples
}
