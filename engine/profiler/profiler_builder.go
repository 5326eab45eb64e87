package profiler

import "time"

// ProfilerOption is a function that configures a Profiler during construction.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a report is logged. Non-positive values keep the default.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithTimeSource replaces time.Now.
func WithTimeSource(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}
