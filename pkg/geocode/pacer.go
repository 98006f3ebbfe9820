package geocode

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Pacer enforces a minimum interval between external lookups. The first
// Wait returns immediately; each later Wait blocks until the interval has
// elapsed since the previous permitted call. The time source is injectable
// so tests can verify pacing without wall-clock sleeps.
type Pacer struct {
	clock clockwork.Clock
	delay time.Duration
	last  time.Time
}

// NewPacer creates a Pacer using the real clock.
func NewPacer(delay time.Duration) *Pacer {
	return NewPacerWithClock(delay, clockwork.NewRealClock())
}

// NewPacerWithClock creates a Pacer with an explicit time source.
func NewPacerWithClock(delay time.Duration, clock clockwork.Clock) *Pacer {
	return &Pacer{clock: clock, delay: delay}
}

// Wait blocks until the next lookup is permitted, or the context ends.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.delay > 0 && !p.last.IsZero() {
		if remaining := p.delay - p.clock.Since(p.last); remaining > 0 {
			timer := p.clock.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.Chan():
			}
		}
	}
	p.last = p.clock.Now()
	return nil
}
