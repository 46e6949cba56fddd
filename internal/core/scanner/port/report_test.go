package port

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neoport/internal/core/model"
)

func TestReport_RecordAssignsSeq(t *testing.T) {
	r := NewReport(localhost, 3)

	ev1, ok := r.Record(80, model.Open(10*time.Millisecond))
	require.True(t, ok)
	ev2, ok := r.Record(22, model.Closed(model.ReasonRefused, 0))
	require.True(t, ok)

	assert.Equal(t, uint64(1), ev1.Seq)
	assert.Equal(t, uint64(2), ev2.Seq)
	assert.Equal(t, 2, r.Len())
}

func TestReport_FinalizeWhileRunning(t *testing.T) {
	r := NewReport(localhost, 3)
	r.Record(80, model.Open(10*time.Millisecond))

	res := r.Finalize()
	assert.Equal(t, model.ScanStateRunning, res.State)
	assert.Len(t, res.Events, 1)
	assert.Equal(t, 3, res.Requested)

	// 快照与后续写入隔离
	r.Record(443, model.Open(10*time.Millisecond))
	assert.Len(t, res.Events, 1)
}

func TestReport_SealIsFinal(t *testing.T) {
	r := NewReport(localhost, 2)
	r.Record(80, model.Open(20*time.Millisecond))
	r.Record(81, model.TimedOut(time.Second))

	require.True(t, r.seal(model.ScanStateCancelled, nil))
	assert.False(t, r.seal(model.ScanStateFatal, errors.New("late")))

	first := r.Finalize()
	_, ok := r.Record(82, model.Open(0))
	assert.False(t, ok)
	second := r.Finalize()

	assert.Equal(t, first, second)
	assert.Equal(t, model.ScanStateCancelled, first.State)
	assert.Empty(t, first.Error)
	assert.Equal(t, 1, first.Counts.Open)
	assert.Equal(t, 1, first.Counts.TimedOut)
	assert.Equal(t, 2, first.Counts.Total())
}

func TestReport_SmoothedRTTFromOpenOnly(t *testing.T) {
	r := NewReport(localhost, 3)
	r.Record(22, model.Closed(model.ReasonRefused, 5*time.Second))
	assert.Zero(t, r.Finalize().SmoothedRTT)

	r.Record(80, model.Open(40*time.Millisecond))
	assert.Equal(t, 40*time.Millisecond, r.Finalize().SmoothedRTT)
}

func TestReport_FatalError(t *testing.T) {
	r := NewReport(localhost, 1)
	r.seal(model.ScanStateFatal, errors.New("boom"))

	res := r.Finalize()
	assert.Equal(t, model.ScanStateFatal, res.State)
	assert.Equal(t, "boom", res.Error)
	assert.Empty(t, res.Events)
}
