package profiler

import (
	"runtime"
	"time"
)

// ProfilerBuilderOption is a function that configures a Profiler during NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how long each reporting interval lasts.
//
// Parameters:
//   - interval: the interval length, ignored if not positive
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the option to a Profiler
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogging enables or disables logging each report. Enabled by default.
func WithLogging(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logEnabled = enabled
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithMemStatsReader replaces runtime.ReadMemStats.
func WithMemStatsReader(read func(*runtime.MemStats)) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.readMem = read
	}
}
