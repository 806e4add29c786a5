package app

import (
	"context"
	"sync"
	"time"
)

// Loop serializes all editor work onto one goroutine. Transport handlers
// enqueue closures with Dispatch; deferred work from event dispatch goes
// through Defer, which never blocks because it is called from closures
// already running on the loop goroutine. The loop also drives the core tick.
type Loop struct {
	commands chan func()
	interval time.Duration
	onTick   func()

	mu       sync.Mutex
	deferred []func()
}

// NewLoop builds a loop ticking at the given interval.
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Loop{
		commands: make(chan func(), 256),
		interval: interval,
	}
}

// OnTick registers the per-tick callback. Must be called before Run.
func (l *Loop) OnTick(fn func()) {
	l.onTick = fn
}

// Dispatch enqueues fn for execution on the loop goroutine. It blocks when
// the queue is full, which back-pressures chatty transports.
func (l *Loop) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	l.commands <- fn
}

// Defer implements host.Scheduler. The work runs on the loop goroutine
// strictly after the current closure finishes. Unlike Dispatch it never
// blocks: Defer is called from closures already running on the loop, where
// waiting on a full command queue would deadlock the loop against itself,
// so overflow spills into an unbounded slice instead.
func (l *Loop) Defer(fn func()) {
	if fn == nil {
		return
	}
	select {
	case l.commands <- fn:
	default:
		l.mu.Lock()
		l.deferred = append(l.deferred, fn)
		l.mu.Unlock()
	}
}

func (l *Loop) takeDeferred() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.deferred) == 0 {
		return nil
	}
	taken := l.deferred
	l.deferred = nil
	return taken
}

// Run processes commands and ticks until the context is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		for _, fn := range l.takeDeferred() {
			fn()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.commands:
			fn()
		case <-ticker.C:
			if l.onTick != nil {
				l.onTick()
			}
		}
	}
}
