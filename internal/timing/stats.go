package timing

import (
	"fmt"
	"time"
)

// Stats aggregates governed frames.
type Stats struct {
	Frames  int
	Missed  int
	total   time.Duration
	worst   time.Duration
	lastSec float64
}

// Add records one frame.
func (s *Stats) Add(f Frame) {
	s.Frames++
	if f.Missed {
		s.Missed++
	}
	s.total += f.Elapsed
	if f.Elapsed > s.worst {
		s.worst = f.Elapsed
	}
	s.lastSec = f.Seconds()
}

// AverageMs is the mean frame period in milliseconds.
func (s *Stats) AverageMs() float64 {
	if s.Frames == 0 {
		return 0
	}
	return float64(s.total.Microseconds()) / 1000 / float64(s.Frames)
}

// WorstMs is the longest frame period in milliseconds.
func (s *Stats) WorstMs() float64 {
	return float64(s.worst.Microseconds()) / 1000
}

// FPS is the rate implied by the most recent frame.
func (s *Stats) FPS() float64 {
	if s.lastSec <= 0 {
		return 0
	}
	return 1 / s.lastSec
}

func (s *Stats) String() string {
	return fmt.Sprintf("%d frames, %d missed, avg %.2fms, worst %.2fms", s.Frames, s.Missed, s.AverageMs(), s.WorstMs())
}
