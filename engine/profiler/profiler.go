// Package profiler aggregates frame timing, batching statistics and memory usage over a fixed interval and
// logs a summary each time the interval elapses.
package profiler

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderpass"
	"github.com/dustin/go-humanize"
)

// Report summarizes one profiling interval.
type Report struct {
	Elapsed time.Duration
	Frames  int
	FPS     float64

	// Per-frame averages of the flush statistics.
	Batches   float64
	Quads     float64
	DrawCalls float64

	// Totals over the interval.
	Skipped  int
	Degraded int

	// UploadRate is the vertex and index bytes uploaded per second.
	UploadRate float64

	HeapAlloc uint64
	Sys       uint64
	// AllocRate is the heap bytes allocated per second.
	AllocRate  float64
	GCCount    uint32
	LastPause  time.Duration
	MaxPause   time.Duration
	errorCount int
}

// Errors returns how many flushes reported an error during the interval.
func (r Report) Errors() int {
	return r.errorCount
}

// String formats the report for a log line or window title.
func (r Report) String() string {
	return fmt.Sprintf("%.1f fps | %.1f draws %.0f quads/frame | upload %s/s | heap %s, alloc %s/s | gc %d",
		r.FPS, r.DrawCalls, r.Quads, humanize.Bytes(uint64(r.UploadRate)),
		humanize.Bytes(r.HeapAlloc), humanize.Bytes(uint64(r.AllocRate)), r.GCCount)
}

// Profiler tracks frame rate, flush statistics and memory for performance monitoring. It is not safe for
// concurrent use; call it from the frame loop.
type Profiler struct {
	updateInterval time.Duration
	now            func() time.Time
	readMem        func(*runtime.MemStats)
	logEnabled     bool

	lastTime time.Time
	frames   int
	totals   renderpass.FrameStats
	errors   int

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Report
}

// NewProfiler creates a Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: a variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		readMem:        runtime.ReadMemStats,
		logEnabled:     true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Record adds the statistics of one FlushFrame to the current interval.
//
// Parameters:
//   - stats: the flush statistics
func (p *Profiler) Record(stats renderpass.FrameStats) {
	p.totals.Batches += stats.Batches
	p.totals.Quads += stats.Quads
	p.totals.DrawCalls += stats.DrawCalls
	p.totals.Skipped += stats.Skipped
	p.totals.Degraded += stats.Degraded
	p.totals.VertexBytes += stats.VertexBytes
	p.totals.IndexBytes += stats.IndexBytes
	if stats.Err != nil {
		p.errors++
	}
}

// Tick should be called once per frame. When the update interval has elapsed it builds a Report, logs it and
// starts a new interval.
//
// Returns:
//   - Report: the finished interval's report
//   - bool: true if an interval finished this tick
func (p *Profiler) Tick() (Report, bool) {
	p.frames++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	seconds := elapsed.Seconds()
	frames := float64(p.frames)
	r := Report{
		Elapsed:    elapsed,
		Frames:     p.frames,
		FPS:        frames / seconds,
		Batches:    float64(p.totals.Batches) / frames,
		Quads:      float64(p.totals.Quads) / frames,
		DrawCalls:  float64(p.totals.DrawCalls) / frames,
		Skipped:    p.totals.Skipped,
		Degraded:   p.totals.Degraded,
		UploadRate: float64(p.totals.VertexBytes+p.totals.IndexBytes) / seconds,
		errorCount: p.errors,
	}

	p.readMem(&p.memStats)
	r.HeapAlloc = p.memStats.Alloc
	r.Sys = p.memStats.Sys
	r.AllocRate = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / seconds
	r.GCCount = p.memStats.NumGC
	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		r.LastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			r.MaxPause = max(r.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	if p.logEnabled {
		log := logger.Logger()
		log.Info("frame stats",
			"fps", fmt.Sprintf("%.2f", r.FPS),
			"draw_calls", fmt.Sprintf("%.1f", r.DrawCalls),
			"batches", fmt.Sprintf("%.1f", r.Batches),
			"quads", humanize.Comma(int64(r.Quads)),
			"upload", humanize.Bytes(uint64(r.UploadRate))+"/s",
			"heap", humanize.Bytes(r.HeapAlloc),
			"alloc", humanize.Bytes(uint64(r.AllocRate))+"/s",
			"sys", humanize.Bytes(r.Sys),
			"gc", r.GCCount,
			"gc_last", r.LastPause,
			"gc_max", r.MaxPause,
		)
		if r.Degraded > 0 || r.Skipped > 0 || r.errorCount > 0 {
			log.Warn("degraded frames", "degraded_draws", r.Degraded, "skipped_draws", r.Skipped, "flush_errors", r.errorCount)
		}
	}

	p.frames = 0
	p.totals = renderpass.FrameStats{}
	p.errors = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = r
	return r, true
}

// Last returns the most recent finished report.
func (p *Profiler) Last() Report {
	return p.last
}
