// Package sampler decides when a frame should be sent for emotion analysis.
//
// Analysis is far slower than capture, so only one frame per interval is
// analysed. The last-run time is recorded whether or not the analysis
// succeeded, which keeps a failing classifier from being retried every frame.
package sampler

import (
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultInterval is the minimum gap between two analyses.
const DefaultInterval = time.Second

// Sampler tracks the last analysis time. The zero last time means "never run".
// It is not safe for concurrent use; the monitor loop owns it.
type Sampler struct {
	interval time.Duration
	clock    clock.Clock
	last     time.Time
}

// New creates a sampler. A non-positive interval falls back to DefaultInterval
// and a nil clock to the wall clock.
func New(interval time.Duration, clk clock.Clock) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Sampler{
		interval: interval,
		clock:    clk,
	}
}

// Interval returns the configured analysis interval.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// Due reports whether more than one interval has passed since the last Mark.
func (s *Sampler) Due() bool {
	if s.last.IsZero() {
		return true
	}
	return s.clock.Since(s.last) > s.interval
}

// Mark records now as the last analysis time and returns it.
func (s *Sampler) Mark() time.Time {
	s.last = s.clock.Now()
	return s.last
}

// Last returns the last analysis time, zero if never run.
func (s *Sampler) Last() time.Time {
	return s.last
}

// Reset forgets the last analysis so the next frame is analysed.
func (s *Sampler) Reset() {
	s.last = time.Time{}
}
