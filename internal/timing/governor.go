// Package timing paces the platform loop to a fixed frame period.
package timing

import "time"

// Clock is the time source the governor measures and waits with.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock uses the process monotonic clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Defaults used when the caller passes zero values to TargetFor.
const (
	DefaultRefreshHz = 60
	DefaultDivisor   = 2
)

// TargetFor returns the frame period for updating once every divisor
// monitor refreshes.
func TargetFor(refreshHz, divisor int) time.Duration {
	if refreshHz <= 0 {
		refreshHz = DefaultRefreshHz
	}
	if divisor <= 0 {
		divisor = 1
	}
	return time.Duration(int64(time.Second) * int64(divisor) / int64(refreshHz))
}

// Frame describes one governed frame.
type Frame struct {
	// Work is the time spent between the previous boundary and Wait.
	Work time.Duration
	// Elapsed is the full frame period including any wait.
	Elapsed time.Duration
	Slept   time.Duration
	// Missed is set when the work alone overran the target.
	Missed bool
	// Overslept is set when a sleep woke up past the target.
	Overslept bool
}

// Seconds returns the frame period in seconds.
func (f Frame) Seconds() float64 {
	return f.Elapsed.Seconds()
}

// Governor holds the loop to one frame per target period.
//
// A single boundary timestamp ends one frame's measurement and starts the
// next, so time spent after Wait returns (presenting) is charged to the
// following frame.
type Governor struct {
	target        time.Duration
	clock         Clock
	sleepGranular bool
	last          time.Time
}

// NewGovernor creates a governor and arms its first boundary now.
// When sleepGranular is false the governor only spins.
func NewGovernor(target time.Duration, clock Clock, sleepGranular bool) *Governor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Governor{
		target:        target,
		clock:         clock,
		sleepGranular: sleepGranular,
		last:          clock.Now(),
	}
}

// Target returns the frame period.
func (g *Governor) Target() time.Duration { return g.target }

// TargetSeconds returns the frame period in seconds, the delta handed to
// the simulation each frame.
func (g *Governor) TargetSeconds() float32 { return float32(g.target.Seconds()) }

// Reset re-arms the frame boundary at the current time.
func (g *Governor) Reset() { g.last = g.clock.Now() }

// Wait blocks until target has elapsed since the last boundary, sleeping
// for whole milliseconds first when sleep is granular and spinning out the
// remainder. An overrun returns immediately with Missed set.
func (g *Governor) Wait() Frame {
	now := g.clock.Now()
	f := Frame{Work: now.Sub(g.last)}
	elapsed := f.Work

	if elapsed < g.target {
		if g.sleepGranular {
			remaining := (g.target - elapsed).Truncate(time.Millisecond)
			if remaining > 0 {
				g.clock.Sleep(remaining)
				f.Slept = remaining
			}
			now = g.clock.Now()
			elapsed = now.Sub(g.last)
			f.Overslept = elapsed > g.target
		}
		for elapsed < g.target {
			now = g.clock.Now()
			elapsed = now.Sub(g.last)
		}
	} else {
		f.Missed = true
	}

	f.Elapsed = elapsed
	g.last = now
	return f
}

// SimulatedClock never blocks: Sleep advances it by d and every Now call
// advances it by Step, so a governor paced by it runs as fast as the work
// allows while still reporting nominal frame times.
type SimulatedClock struct {
	Step time.Duration
	now  time.Time
}

// NewSimulatedClock starts a clock at start.
func NewSimulatedClock(start time.Time, step time.Duration) *SimulatedClock {
	return &SimulatedClock{Step: step, now: start}
}

func (c *SimulatedClock) Now() time.Time {
	c.now = c.now.Add(c.Step)
	return c.now
}

func (c *SimulatedClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }
