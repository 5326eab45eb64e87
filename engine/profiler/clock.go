package profiler

import "time"

// maxDelta caps a single frame step so a stall (window drag, breakpoint) does not fling the
// camera across the map.
const maxDelta = 250 * time.Millisecond

// Clock measures frame deltas and a smoothed frame rate.
type Clock struct {
	now     func() time.Time
	start   time.Time
	last    time.Time
	delta   time.Duration
	fps     float64
	started bool
}

// NewClock creates a clock reading time from now, or time.Now when now is nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Tick advances the clock by one frame and returns the delta in seconds. The first tick
// returns 0.
func (c *Clock) Tick() float32 {
	t := c.now()
	if !c.started {
		c.start, c.last, c.started = t, t, true
		return 0
	}
	c.delta = min(t.Sub(c.last), maxDelta)
	c.last = t
	if c.delta > 0 {
		// exponential moving average over roughly ten frames
		instant := 1 / c.delta.Seconds()
		if c.fps == 0 {
			c.fps = instant
		} else {
			c.fps += (instant - c.fps) * 0.1
		}
	}
	return float32(c.delta.Seconds())
}

// Delta returns the last frame's duration.
func (c *Clock) Delta() time.Duration {
	return c.delta
}

// Time returns the time since the first tick.
func (c *Clock) Time() time.Duration {
	if !c.started {
		return 0
	}
	return c.last.Sub(c.start)
}

// FPS returns the smoothed frame rate.
func (c *Clock) FPS() float64 {
	return c.fps
}
