package offline

import (
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Strategy decides how a scheduling caller spaces sync passes. The
// Synchronizer itself never delays or gives up; swapping the strategy
// changes pacing without touching its call sites.
type Strategy interface {
	// NextPass returns the extra delay before the next pass, given whether
	// the last pass left failed items in the queue.
	NextPass(failed bool) time.Duration
}

// RetryAlways retries on the caller's own cadence with no added delay:
// unbounded retry, no backoff, no dead-lettering.
type RetryAlways struct{}

// NextPass always returns zero.
func (RetryAlways) NextPass(bool) time.Duration { return 0 }

// Backoff adds fibonacci-growing delay after failed passes, capped at max,
// and resets as soon as a pass leaves nothing behind.
type Backoff struct {
	base time.Duration
	max  time.Duration

	mu sync.Mutex
	b  retry.Backoff
}

// NewBackoff constructs a Backoff strategy growing from base up to max.
func NewBackoff(base, max time.Duration) *Backoff {
	s := &Backoff{base: base, max: max}
	s.b = s.fresh()
	return s
}

func (s *Backoff) fresh() retry.Backoff {
	return retry.WithCappedDuration(s.max, retry.NewFibonacci(s.base))
}

// NextPass returns the next delay, growing while failures persist.
func (s *Backoff) NextPass(failed bool) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !failed {
		s.b = s.fresh()
		return 0
	}
	d, _ := s.b.Next()
	return d
}
