package qos

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// FixedLimiter 固定上限的准入控制，基于加权信号量
type FixedLimiter struct {
	sem  *semaphore.Weighted
	size int
}

func NewFixedLimiter(n int) *FixedLimiter {
	if n < 1 {
		n = 1
	}
	return &FixedLimiter{
		sem:  semaphore.NewWeighted(int64(n)),
		size: n,
	}
}

// Acquire 注意: ctx 已结束时 semaphore 仍可能直接成功，调用方需要自行复查 ctx
func (l *FixedLimiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *FixedLimiter) Release() {
	l.sem.Release(1)
}

func (l *FixedLimiter) Limit() int {
	return l.size
}

// New 按模式创建限流器
func New(concurrency int, adaptive bool) Limiter {
	if adaptive {
		return NewAdaptiveLimiter(concurrency, 1, concurrency)
	}
	return NewFixedLimiter(concurrency)
}
