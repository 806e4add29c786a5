package app

import (
	"context"
	"testing"
	"time"
)

func TestDeferNeverBlocksOnFullQueue(t *testing.T) {
	loop := NewLoop(time.Hour)
	for i := 0; i < cap(loop.commands); i++ {
		loop.Dispatch(func() {})
	}

	// Defer is called from closures on the loop goroutine itself; if it
	// waited for queue space here it would deadlock the loop.
	ran := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		loop.Defer(func() { close(ran) })
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatalf("Defer blocked on a full command queue")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("overflowed deferred work never ran")
	}
}

func TestDeferRunsAfterCurrentClosure(t *testing.T) {
	loop := NewLoop(time.Hour)
	order := make(chan string, 2)
	done := make(chan struct{})

	loop.Dispatch(func() {
		loop.Defer(func() {
			order <- "deferred"
			close(done)
		})
		order <- "dispatch"
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("deferred work never ran")
	}
	if first := <-order; first != "dispatch" {
		t.Fatalf("deferred work ran before the enclosing closure finished")
	}
}
