package profiler

import (
	"log"
	"runtime"
	"time"
)

// Sample describes one pass of the frame loop.
type Sample struct {
	// Drawn is false when change detection skipped the draw.
	Drawn bool
	// DrawCalls, Culled and Triangles are the renderer statistics of a drawn frame.
	DrawCalls int
	Culled    int
	Triangles int
	// Duration is the wall time spent drawing.
	Duration time.Duration
}

// Report aggregates the samples of one interval.
type Report struct {
	Drawn       int
	Skipped     int
	FPS         float64
	AvgDraw     time.Duration
	DrawCalls   int
	Culled      int
	Triangles   int
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks drawn and skipped frames, renderer statistics and memory for performance
// monitoring. Outputs a report to the log at a configurable interval.
type Profiler struct {
	drawn, skipped int
	drawTime       time.Duration
	last           Sample
	lastTime       time.Time
	updateInterval time.Duration
	now            func() time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastReport     Report
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per pass of the frame loop, drawn or not.
// Logs a report when the update interval has elapsed.
//
// Parameters:
//   - s: the sample of this pass
//
// Returns:
//   - bool: true if a report was logged this tick, false otherwise
func (p *Profiler) Tick(s Sample) bool {
	if s.Drawn {
		p.drawn++
		p.drawTime += s.Duration
		p.last = s
	} else {
		p.skipped++
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		Drawn:     p.drawn,
		Skipped:   p.skipped,
		FPS:       float64(p.drawn) / elapsed.Seconds(),
		DrawCalls: p.last.DrawCalls,
		Culled:    p.last.Culled,
		Triangles: p.last.Triangles,
		HeapMB:    float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:     float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:   p.memStats.NumGC,
	}
	if p.drawn > 0 {
		r.AvgDraw = p.drawTime / time.Duration(p.drawn)
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	startIdx := p.lastGCCount
	if r.GCCount-startIdx > 256 {
		startIdx = r.GCCount - 256
	}
	for i := startIdx; i < r.GCCount; i++ {
		r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	log.Printf("[Profiler] FPS: %.2f | Drawn: %d Skipped: %d | Draw: %s | Calls: %d Culled: %d Tris: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max: %d µs) | Sys: %.2f MB",
		r.FPS, r.Drawn, r.Skipped, r.AvgDraw, r.DrawCalls, r.Culled, r.Triangles, r.HeapMB, r.AllocRateMB, r.GCCount, r.MaxPauseUs, r.SysMB)

	p.lastReport = r
	p.drawn, p.skipped, p.drawTime = 0, 0, 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// LastReport returns the most recently logged report.
func (p *Profiler) LastReport() Report {
	return p.lastReport
}
