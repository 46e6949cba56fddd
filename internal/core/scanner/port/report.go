package port

import (
	"sync"
	"time"

	"neoport/internal/core/lib/network/qos"
	"neoport/internal/core/model"
)

// Report 单次扫描的结果汇总
// Record 只由调度器的收集协程调用；Finalize 可在任意协程、任意时刻调用
type Report struct {
	mu        sync.Mutex
	target    model.Target
	requested int
	events    []model.PortEvent
	counts    model.OutcomeCounts
	rtt       *qos.RttEstimator
	seq       uint64

	state      model.ScanState
	err        error
	startedAt  time.Time
	finishedAt time.Time
	sealed     bool
}

// NewReport 创建运行中的报告
func NewReport(target model.Target, requested int) *Report {
	return &Report{
		target:    target,
		requested: requested,
		events:    make([]model.PortEvent, 0, requested),
		rtt:       qos.NewRttEstimator(),
		state:     model.ScanStateRunning,
		startedAt: time.Now(),
	}
}

// Record 追加一条结果，分配完成序号
// 报告封存后的调用被忽略，返回 false
func (r *Report) Record(port int, outcome model.ProbeOutcome) (model.PortEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return model.PortEvent{}, false
	}

	r.seq++
	ev := model.PortEvent{
		Seq:         r.seq,
		Port:        port,
		Outcome:     outcome,
		CompletedAt: time.Now(),
	}
	r.events = append(r.events, ev)
	r.counts.Add(outcome.Kind)
	if outcome.IsOpen() {
		r.rtt.Update(outcome.RTT)
	}
	return ev, true
}

// Len 已记录的结果数
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// seal 写入终态，只生效一次
func (r *Report) seal(state model.ScanState, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return false
	}
	r.sealed = true
	r.state = state
	r.err = err
	r.finishedAt = time.Now()
	return true
}

// Finalize 生成结果快照
// 封存前调用得到 Running 状态的部分结果；封存后多次调用返回相同内容
func (r *Report) Finalize() *model.ScanResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	finished := r.finishedAt
	if !r.sealed {
		finished = time.Now()
	}

	events := make([]model.PortEvent, len(r.events))
	copy(events, r.events)

	res := &model.ScanResult{
		Target:     r.target,
		State:      r.state,
		Requested:  r.requested,
		Events:     events,
		Counts:     r.counts,
		StartedAt:  r.startedAt,
		FinishedAt: finished,
		Elapsed:    finished.Sub(r.startedAt),
	}
	if r.rtt.Samples() > 0 {
		res.SmoothedRTT = r.rtt.Smoothed()
	}
	if r.err != nil {
		res.Error = r.err.Error()
	}
	return res
}
