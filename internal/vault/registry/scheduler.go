package registry

import (
	"context"
	"sync"
	"time"

	"github.com/authvault/authvault/internal/pkg/clock"
)

// Scheduler drives the registry with a single 1 Hz tick. There is one
// scheduler per process regardless of how many credentials or owners
// are resident; per-credential countdowns are derived from each
// credential's own period on the shared tick.
type Scheduler struct {
	reg      *Registry
	clock    clock.Clocker
	interval time.Duration

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewScheduler builds a scheduler for the registry. A non-positive
// interval falls back to one second.
func NewScheduler(reg *Registry, clk clock.Clocker, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}

	return &Scheduler{
		reg:      reg,
		clock:    clk,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop. An empty registry makes each tick a
// cheap no-op; membership changes between ticks are picked up without
// restarting the timer.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reg.Tick(s.clock.Now())
			}
		}
	}()
}

// Stop cancels the tick loop and waits for it to exit. Safe to call
// more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
	})
}
