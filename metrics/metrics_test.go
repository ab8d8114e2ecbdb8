package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveRedraw(RedrawFull, 120, 30)
	r.ObserveRedraw(RedrawPartial, 8, 0)
	r.ObserveRedraw(RedrawSkipped, 0, 0)
	r.ObserveFrame(33*time.Millisecond, 40)
	r.ObserveContext(7, 3)
	r.ObserveContext(5, 1)
	r.Throttled()

	assert.InDelta(t, 1, testutil.ToFloat64(r.redraws.WithLabelValues(RedrawFull)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.redraws.WithLabelValues(RedrawPartial)), 0)
	assert.InDelta(t, 128, testutil.ToFloat64(r.primitives.WithLabelValues("segment")), 0)
	assert.InDelta(t, 70, testutil.ToFloat64(r.primitives.WithLabelValues("dot")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(r.inView), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(r.lodBuilds), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.throttled), 0)

	n, err := testutil.GatherAndCount(reg, "dotlayer_frame_delay_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveFrame(time.Second, 1)
		r.ObserveRedraw(RedrawFull, 1, 1)
		r.ObserveContext(1, 1)
		r.Throttled()
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
