package reporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neoport/internal/core/model"
)

func init() {
	pterm.DisableColor()
}

func sampleResult(state model.ScanState) *model.ScanResult {
	res := &model.ScanResult{
		Target:    model.NewTarget("localhost", netip.MustParseAddr("127.0.0.1")),
		State:     state,
		Requested: 4,
		Events: []model.PortEvent{
			{Seq: 1, Port: 22, Outcome: model.Closed(model.ReasonRefused, time.Millisecond)},
			{Seq: 2, Port: 80, Outcome: model.Open(2 * time.Millisecond).WithService("http")},
			{Seq: 3, Port: 9999, Outcome: model.TimedOut(200 * time.Millisecond)},
		},
		Elapsed:     210 * time.Millisecond,
		SmoothedRTT: 2 * time.Millisecond,
	}
	for _, ev := range res.Events {
		res.Counts.Add(ev.Outcome.Kind)
	}
	return res
}

func TestConsoleReporter_PrintEvent(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, false)

	r.PrintEvent(model.PortEvent{Port: 80, Outcome: model.Open(0).WithService("http")})
	r.PrintEvent(model.PortEvent{Port: 22, Outcome: model.Closed(model.ReasonRefused, 0)})
	r.PrintEvent(model.PortEvent{Port: 31337, Outcome: model.Open(0)})

	assert.Equal(t, "Port 80: http > open\nPort 31337 > open\n", buf.String())
}

func TestConsoleReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, false)

	require.NoError(t, r.Report(context.Background(), sampleResult(model.ScanStateCompleted)))
	out := buf.String()
	assert.Contains(t, out, "80/tcp")
	assert.NotContains(t, out, "22/tcp")
	assert.Contains(t, out, "3/4 ports scanned")
	assert.Contains(t, out, "Scan complete.")

	buf.Reset()
	r = NewConsoleReporter(&buf, true)
	require.NoError(t, r.Report(context.Background(), sampleResult(model.ScanStateCancelled)))
	out = buf.String()
	assert.Contains(t, out, "22/tcp")
	assert.Contains(t, out, "Scan aborted by user.")
}

func TestConsoleReporter_Header(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, false)
	r.PrintHeader(model.NewTarget("localhost", netip.MustParseAddr("127.0.0.1")), 4, time.Now())
	assert.Contains(t, buf.String(), "Scanning Target > localhost (127.0.0.1)")
	assert.Contains(t, buf.String(), "Please wait...")
}

func TestSaveCsvResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, NewCsvReporter(path).Report(context.Background(), sampleResult(model.ScanStateCompleted)))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(content), "\xEF\xBB\xBF"))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(content), "\xEF\xBB\xBF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Seq", "Port", "State", "Service", "Reason", "RTT"}, records[0])
	assert.Equal(t, "80/tcp", records[2][1])
	assert.Equal(t, "http", records[2][3])
}

func TestSaveJsonResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, NewJsonReporter(path).Report(context.Background(), sampleResult(model.ScanStateCancelled)))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded model.ScanResult
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, model.ScanStateCancelled, decoded.State)
	assert.Len(t, decoded.Events, 3)
	assert.Equal(t, 1, decoded.Counts.Open)
}

type failingReporter struct{}

func (failingReporter) Report(context.Context, *model.ScanResult) error { return errors.New("disk full") }

func TestMultiReporter(t *testing.T) {
	var buf bytes.Buffer
	m := NewMultiReporter(failingReporter{})
	m.Add(NewConsoleReporter(&buf, false))
	m.Add(nil)

	err := m.Report(context.Background(), sampleResult(model.ScanStateCompleted))
	assert.ErrorContains(t, err, "disk full")
	// 前一个失败不影响后续输出
	assert.Contains(t, buf.String(), "Scan complete.")
}
