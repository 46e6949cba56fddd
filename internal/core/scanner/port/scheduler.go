/**
 * 端口扫描调度器
 * @author: Sun977
 * @date: 2026.02.12
 * @description: 限流准入 + 完成顺序交付。取消后不再准入新探测，在途探测有一个宽限期，超时后其结果丢弃。
 */

package port

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"neoport/internal/core/lib/network/qos"
	"neoport/internal/core/model"
	"neoport/internal/pkg/logger"
)

// DefaultGrace 取消后等待在途探测的默认时长
const DefaultGrace = 1 * time.Second

// ErrFatal 调度器自身故障 (与单个端口的探测失败无关)
var ErrFatal = errors.New("scan scheduler failure")

var scanSeq atomic.Uint64

// Resolver 服务名查询，查不到返回 ("", false)
type Resolver interface {
	NameFor(port int, proto string) (string, bool)
}

// Scheduler 端口扫描调度器
// 本身无状态，可复用；每次 Run 产生一个独立的 Scan
type Scheduler struct {
	prober     Prober
	resolver   Resolver
	newLimiter func(concurrency int) qos.Limiter
	grace      time.Duration
}

// Option 调度器选项
type Option func(*Scheduler)

// WithGrace 取消后的宽限期，0 表示立即丢弃在途结果
func WithGrace(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.grace = d
		}
	}
}

// WithAdaptive 使用 AIMD 自适应限流，上限仍为配置的并发数
func WithAdaptive(adaptive bool) Option {
	return func(s *Scheduler) {
		s.newLimiter = func(c int) qos.Limiter { return qos.New(c, adaptive) }
	}
}

// WithLimiterFactory 自定义限流器
func WithLimiterFactory(f func(concurrency int) qos.Limiter) Option {
	return func(s *Scheduler) {
		if f != nil {
			s.newLimiter = f
		}
	}
}

// NewScheduler 创建调度器，resolver 可为 nil (不做服务名注解)
func NewScheduler(prober Prober, resolver Resolver, opts ...Option) *Scheduler {
	s := &Scheduler{
		prober:   prober,
		resolver: resolver,
		newLimiter: func(c int) qos.Limiter {
			return qos.New(c, false)
		},
		grace: DefaultGrace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run 校验配置并启动扫描，立即返回
// 配置非法时返回 model.ErrInvalidConfig，不会产生任何 Scan
func (s *Scheduler) Run(ctx context.Context, cfg *model.ScanConfig) (*Scan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.prober == nil {
		return nil, fmt.Errorf("%w: prober is nil", model.ErrInvalidConfig)
	}

	// 在途探测数不会超过端口数，超出部分的令牌没有意义
	limit := cfg.Concurrency
	if n := len(cfg.Ports); n > 0 && limit > n {
		limit = n
	}
	limiter := s.newLimiter(limit)
	if limiter == nil {
		return nil, fmt.Errorf("%w: limiter is nil", ErrFatal)
	}

	runCtx, cancel := context.WithCancel(ctx)
	scan := newScan(fmt.Sprintf("scan-%d-%d", time.Now().Unix(), scanSeq.Add(1)), cfg, cancel)

	logger.LogScanOperation(scan.id, "tcp_connect", cfg.Target.String(), string(model.ScanStateRunning), 0, "", 0, map[string]interface{}{
		"ports":       len(cfg.Ports),
		"concurrency": cfg.Concurrency,
		"timeout":     cfg.Timeout.String(),
	})

	go scan.collect()
	go s.dispatch(runCtx, scan, limiter)

	return scan, nil
}

// dispatch 按输入顺序准入端口，负责取消与宽限期
func (s *Scheduler) dispatch(ctx context.Context, scan *Scan, limiter qos.Limiter) {
	cfg := scan.cfg

	// 探测不直接继承扫描的取消信号，宽限期结束后才统一中止
	probeCtx, abort := context.WithCancel(context.WithoutCancel(ctx))
	defer abort()

	var (
		wg        sync.WaitGroup
		cancelled bool
		fatal     error
	)

	for _, p := range cfg.Ports {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if !model.ValidPort(p) {
			scan.emit(p, model.Errored(fmt.Sprintf("invalid port %d", p), 0))
			continue
		}

		if err := limiter.Acquire(ctx); err != nil {
			if ctx.Err() != nil {
				cancelled = true
			} else {
				fatal = fmt.Errorf("%w: acquire probe slot: %v", ErrFatal, err)
			}
			break
		}
		// 信号量在 ctx 已结束时仍可能成功
		if ctx.Err() != nil {
			limiter.Release()
			cancelled = true
			break
		}

		wg.Add(1)
		go s.probe(probeCtx, scan, limiter, p, &wg)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	if !cancelled && fatal == nil {
		select {
		case <-finished:
		case <-ctx.Done():
			cancelled = true
		}
	}

	if cancelled || fatal != nil {
		grace := s.grace
		if fatal != nil {
			grace = 0
		}
		timer := time.NewTimer(grace)
		select {
		case <-finished:
		case <-timer.C:
		}
		timer.Stop()

		scan.aborted.Store(true)
		abort()
	}

	if fatal != nil {
		logger.Errorf("[%s] %v", scan.id, fatal)
	}
	scan.finish <- termination{cancelled: cancelled, fatal: fatal}
}

// probe 单个端口的探测协程
func (s *Scheduler) probe(ctx context.Context, scan *Scan, limiter qos.Limiter, port int, wg *sync.WaitGroup) {
	defer wg.Done()
	defer limiter.Release()

	outcome := s.safeProbe(ctx, scan.cfg, port)

	if fb, ok := limiter.(qos.Feedback); ok {
		switch outcome.Kind {
		case model.OutcomeTimedOut:
			fb.OnFailure()
		case model.OutcomeOpen, model.OutcomeClosed:
			fb.OnSuccess()
		}
	}

	if scan.aborted.Load() {
		return
	}

	if outcome.IsOpen() && s.resolver != nil {
		if name, ok := s.resolver.NameFor(port, "tcp"); ok {
			outcome = outcome.WithService(name)
		}
	}
	scan.emit(port, outcome)
}

// safeProbe 探测器 panic 时转换为该端口的 Errored 结果
func (s *Scheduler) safeProbe(ctx context.Context, cfg *model.ScanConfig, port int) (outcome model.ProbeOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("probe panic on port %d: %v\n%s", port, r, debug.Stack())
			outcome = model.Errored(fmt.Sprintf("probe panic: %v", r), 0)
		}
	}()
	return s.prober.Probe(ctx, cfg.Target, port, cfg.Timeout)
}
