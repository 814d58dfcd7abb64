// Package ticker runs the coordinator's single cooperative background
// loop: a fixed-interval tick that drives worker eviction and lifecycle
// transitions (spec.md §2, §4.1).
package ticker

import (
	"context"
	"sync"
	"time"

	"github.com/noctiluca/rendermanager/internal/logging"
)

// Loop drives a single Tick func at a fixed interval. Unlike a multi-poller
// registry with per-attempt retry/backoff, there is exactly one tick
// function here and it has no failure mode to retry: scanner and
// persistence errors are logged where they occur rather than returned
// (see coordinator.State.Tick).
type Loop struct {
	name     string
	interval time.Duration
	tick     func(now time.Time)

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewLoop creates a Loop that calls tick once per interval.
func NewLoop(name string, interval time.Duration, tick func(now time.Time)) *Loop {
	return &Loop{name: name, interval: interval, tick: tick}
}

// Start begins the loop in a goroutine. It is a no-op if already running.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}

	logging.InfoWithComponent(logging.ComponentTicker, "starting ticker", "name", l.name, "interval", l.interval)

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.running = true

	go l.run(runCtx)
}

// Stop blocks until the loop's goroutine has exited. It is a no-op if not
// running.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	done := l.done
	l.mu.Unlock()

	logging.InfoWithComponent(logging.ComponentTicker, "stopping ticker", "name", l.name)
	cancel()
	<-done

	l.mu.Lock()
	l.running = false
	l.mu.Unlock()

	logging.InfoWithComponent(logging.ComponentTicker, "ticker stopped", "name", l.name)
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	l.tick(time.Now())

	t := time.NewTicker(l.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			l.tick(now)
		}
	}
}
