package port

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"neoport/internal/core/model"
	"neoport/internal/pkg/logger"
)

type portResult struct {
	port    int
	outcome model.ProbeOutcome
}

// termination 调度协程交给收集协程的收尾信息
type termination struct {
	cancelled bool
	fatal     error
}

// Scan 一次运行中的扫描
// 结果通过 Events 按完成顺序逐条交付，调用方不消费也不会阻塞扫描
type Scan struct {
	id     string
	cfg    *model.ScanConfig
	report *Report
	cancel context.CancelFunc

	outcomes chan portResult      // 探测协程 -> 收集协程，容量等于端口数，不关闭
	events   chan model.PortEvent // 收集协程 -> 调用方，终态后关闭
	finish   chan termination
	done     chan struct{}

	// 宽限期结束后置位，之后完成的探测结果全部丢弃
	aborted atomic.Bool

	mu     sync.RWMutex
	state  model.ScanState
	err    error
	result *model.ScanResult
}

func newScan(id string, cfg *model.ScanConfig, cancel context.CancelFunc) *Scan {
	n := len(cfg.Ports)
	return &Scan{
		id:       id,
		cfg:      cfg,
		report:   NewReport(cfg.Target, n),
		cancel:   cancel,
		outcomes: make(chan portResult, n),
		events:   make(chan model.PortEvent, n),
		finish:   make(chan termination, 1),
		done:     make(chan struct{}),
		state:    model.ScanStateRunning,
	}
}

// ID 扫描标识，用于日志关联
func (s *Scan) ID() string { return s.id }

// Config 本次扫描的配置 (只读)
func (s *Scan) Config() *model.ScanConfig { return s.cfg }

// Report 结果汇总，运行中也可以调用 Finalize 查看部分结果
func (s *Scan) Report() *Report { return s.report }

// Events 完成顺序的结果流，扫描进入终态后关闭
func (s *Scan) Events() <-chan model.PortEvent { return s.events }

// Done 扫描进入终态后关闭
func (s *Scan) Done() <-chan struct{} { return s.done }

// Cancel 停止准入新的探测，等价于取消 Run 时传入的 ctx
func (s *Scan) Cancel() { s.cancel() }

// State 当前状态
func (s *Scan) State() model.ScanState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err 仅在 Fatal 时非空
func (s *Scan) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Wait 阻塞到终态，返回最终结果
// Cancelled 不是错误，返回的结果包含已完成的部分；只有 Fatal 返回 error
func (s *Scan) Wait() (*model.ScanResult, error) {
	<-s.done
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.err
}

func (s *Scan) emit(port int, outcome model.ProbeOutcome) {
	s.outcomes <- portResult{port: port, outcome: outcome}
}

// collect 唯一写 Report 的协程
func (s *Scan) collect() {
	for {
		select {
		case r := <-s.outcomes:
			s.record(r)
		case t := <-s.finish:
			s.drain()
			s.complete(t)
			return
		}
	}
}

// drain 收尾前取走已缓冲的结果
func (s *Scan) drain() {
	for {
		select {
		case r := <-s.outcomes:
			s.record(r)
		default:
			return
		}
	}
}

func (s *Scan) record(r portResult) {
	ev, ok := s.report.Record(r.port, r.outcome)
	if !ok {
		return
	}
	s.events <- ev
}

func (s *Scan) complete(t termination) {
	state := model.ScanStateCompleted
	switch {
	case t.fatal != nil:
		state = model.ScanStateFatal
	case s.report.Len() < len(s.cfg.Ports):
		state = model.ScanStateCancelled
	}

	s.report.seal(state, t.fatal)
	result := s.report.Finalize()

	s.mu.Lock()
	s.state = state
	s.err = t.fatal
	s.result = result
	s.mu.Unlock()

	s.cancel()
	close(s.events)
	close(s.done)

	logger.LogScanOperation(s.id, "tcp_connect", s.cfg.Target.String(), string(state), 100,
		fmt.Sprintf("open=%d closed=%d timeout=%d error=%d",
			result.Counts.Open, result.Counts.Closed, result.Counts.TimedOut, result.Counts.Errored),
		result.Elapsed.Milliseconds(),
		map[string]interface{}{"requested": result.Requested, "recorded": len(result.Events)})
}
