package model

import (
	"fmt"
	"strconv"
	"time"
)

// OutcomeCounts 各类结果计数
type OutcomeCounts struct {
	Open     int `json:"open"`
	Closed   int `json:"closed"`
	TimedOut int `json:"timed_out"`
	Errored  int `json:"errored"`
}

// Add 按类别计数
func (c *OutcomeCounts) Add(kind OutcomeKind) {
	switch kind {
	case OutcomeOpen:
		c.Open++
	case OutcomeClosed:
		c.Closed++
	case OutcomeTimedOut:
		c.TimedOut++
	case OutcomeErrored:
		c.Errored++
	}
}

func (c OutcomeCounts) Total() int {
	return c.Open + c.Closed + c.TimedOut + c.Errored
}

// ScanResult 扫描结果
// Events 为完成顺序，不是输入顺序
type ScanResult struct {
	Target      Target        `json:"target"`
	State       ScanState     `json:"state"`
	Requested   int           `json:"requested"` // 输入端口条目数 (含重复)
	Events      []PortEvent   `json:"events"`
	Counts      OutcomeCounts `json:"counts"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Elapsed     time.Duration `json:"elapsed"`
	SmoothedRTT time.Duration `json:"smoothed_rtt,omitempty"` // 开放端口连接耗时的平滑值
	Error       string        `json:"error,omitempty"`
}

// OpenEvents 返回所有 Open 结果 (完成顺序)
func (r *ScanResult) OpenEvents() []PortEvent {
	var open []PortEvent
	for _, ev := range r.Events {
		if ev.Outcome.IsOpen() {
			open = append(open, ev)
		}
	}
	return open
}

// Headers 实现 TabularData 接口
// Seq | Port | State | Service | Reason | RTT
func (r *ScanResult) Headers() []string {
	return []string{"Seq", "Port", "State", "Service", "Reason", "RTT"}
}

// Rows 实现 TabularData 接口，输出全部结果
func (r *ScanResult) Rows() [][]string {
	return eventRows(r.Events)
}

// OpenRows 只输出开放端口，控制台默认使用
func (r *ScanResult) OpenRows() [][]string {
	return eventRows(r.OpenEvents())
}

func eventRows(events []PortEvent) [][]string {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rtt := "N/A"
		if ev.Outcome.RTT > 0 {
			rtt = ev.Outcome.RTT.Round(time.Microsecond).String()
		}
		rows = append(rows, []string{
			strconv.FormatUint(ev.Seq, 10),
			fmt.Sprintf("%d/tcp", ev.Port),
			string(ev.Outcome.Kind),
			ev.Outcome.Service,
			ev.Outcome.Reason,
			rtt,
		})
	}
	return rows
}
