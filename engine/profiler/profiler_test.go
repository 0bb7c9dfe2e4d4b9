package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsPerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithInterval(time.Second), WithClock(func() time.Time { return now }))

	assert.False(t, p.Tick(Sample{Drawn: true, DrawCalls: 2, Triangles: 100, Duration: 4 * time.Millisecond}))
	assert.False(t, p.Tick(Sample{Drawn: false}))

	now = now.Add(2 * time.Second)
	assert.True(t, p.Tick(Sample{Drawn: true, DrawCalls: 3, Culled: 1, Triangles: 80, Duration: 2 * time.Millisecond}))

	r := p.LastReport()
	assert.Equal(t, 2, r.Drawn)
	assert.Equal(t, 1, r.Skipped)
	assert.InDelta(t, 1.0, r.FPS, 1e-9)
	assert.Equal(t, 3*time.Millisecond, r.AvgDraw)
	assert.Equal(t, 3, r.DrawCalls)
	assert.Equal(t, 1, r.Culled)
	assert.Equal(t, 80, r.Triangles)

	assert.False(t, p.Tick(Sample{Drawn: false}), "counters restart after a report")
}
