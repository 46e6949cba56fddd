package qos

import (
	"context"
	"sync"
)

// Limiter 准入控制原语
// 每次探测开始前 Acquire，结束后 Release；同时持有的令牌数即在途探测数
type Limiter interface {
	Acquire(ctx context.Context) error
	Release()
}

// Feedback 可选接口，限流器据此调整并发额度
type Feedback interface {
	OnSuccess()
	OnFailure()
}

// AdaptiveLimiter 实现了 AIMD (Additive Increase Multiplicative Decrease) 拥塞控制
// - 成功时：线性增加并发额度
// - 超时时：乘性减少并发额度
// 在途数量永远不会超过 maxLimit，maxLimit 即用户配置的并发上限
type AdaptiveLimiter struct {
	sem chan struct{} // 空闲令牌，容量为 maxLimit

	mu           sync.Mutex
	debt         int // 已借出但需要在 Release 时销毁的令牌数
	currentLimit int
	minLimit     int
	maxLimit     int
	successCount int
}

// NewAdaptiveLimiter 创建自适应限流器
// initial: 初始并发数; min: 最小并发数; max: 最大并发数 (硬上限)
func NewAdaptiveLimiter(initial, min, max int) *AdaptiveLimiter {
	if max < 1 {
		max = 1
	}
	if min < 1 {
		min = 1
	}
	if min > max {
		min = max
	}
	if initial < min {
		initial = min
	}
	if initial > max {
		initial = max
	}

	l := &AdaptiveLimiter{
		sem:          make(chan struct{}, max),
		currentLimit: initial,
		minLimit:     min,
		maxLimit:     max,
	}
	for i := 0; i < initial; i++ {
		l.sem <- struct{}{}
	}
	return l
}

// Acquire 获取一个令牌，阻塞直到有空闲令牌或 ctx 结束
func (l *AdaptiveLimiter) Acquire(ctx context.Context) error {
	select {
	case <-l.sem:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release 归还令牌
// 有欠账时直接销毁令牌，相当于延迟生效的缩容
func (l *AdaptiveLimiter) Release() {
	l.mu.Lock()
	if l.debt > 0 {
		l.debt--
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	default:
		// Release 次数多于 Acquire，丢弃
	}
}

// OnSuccess 连续成功 currentLimit 次后额度 +1
func (l *AdaptiveLimiter) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successCount++
	if l.successCount >= l.currentLimit {
		l.successCount = 0
		l.increaseLimit(1)
	}
}

// OnFailure 额度乘以 0.7，至少减 1
func (l *AdaptiveLimiter) OnFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLimit := int(float64(l.currentLimit) * 0.7)
	decrease := l.currentLimit - newLimit
	if decrease < 1 {
		decrease = 1
	}
	l.decreaseLimit(decrease)
	l.successCount = 0
}

// increaseLimit 调用方持有 mu
// 先抵消欠账再注入新令牌，保证 已借出 <= currentLimit + debt <= maxLimit
func (l *AdaptiveLimiter) increaseLimit(n int) {
	target := l.currentLimit + n
	if target > l.maxLimit {
		target = l.maxLimit
	}
	diff := target - l.currentLimit
	if diff <= 0 {
		return
	}
	l.currentLimit = target

	if l.debt >= diff {
		l.debt -= diff
		return
	}
	diff -= l.debt
	l.debt = 0
	for i := 0; i < diff; i++ {
		select {
		case l.sem <- struct{}{}:
		default:
		}
	}
}

// decreaseLimit 调用方持有 mu
// 先取走空闲令牌，取不到的记为欠账
func (l *AdaptiveLimiter) decreaseLimit(n int) {
	target := l.currentLimit - n
	if target < l.minLimit {
		target = l.minLimit
	}
	diff := l.currentLimit - target
	if diff <= 0 {
		return
	}
	l.currentLimit = target

	removed := 0
	for i := 0; i < diff; i++ {
		select {
		case <-l.sem:
			removed++
		default:
		}
	}
	l.debt += diff - removed
}

// CurrentLimit 当前并发额度
func (l *AdaptiveLimiter) CurrentLimit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLimit
}

// MaxLimit 硬上限
func (l *AdaptiveLimiter) MaxLimit() int {
	return l.maxLimit
}

func (l *AdaptiveLimiter) pendingDebt() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debt
}
