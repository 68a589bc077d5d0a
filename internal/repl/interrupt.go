package repl

import (
	"context"
	"os"
	"os/signal"
	"sync"
)

// InterruptBroadcaster fans the user interrupt signal out to at most one
// subscriber: the turn currently awaiting stream output. Interrupts arriving
// while nothing is subscribed are dropped rather than queued, so a Ctrl+C
// pressed between turns has no delayed effect.
type InterruptBroadcaster struct {
	mu         sync.Mutex
	subscriber chan struct{}
}

// NewInterruptBroadcaster creates an interrupt broadcaster. Call Watch to
// start observing the process interrupt signal.
func NewInterruptBroadcaster() *InterruptBroadcaster {
	return &InterruptBroadcaster{}
}

// Watch starts the long-lived goroutine that observes os.Interrupt and
// forwards it to the current subscriber. It returns immediately; the
// goroutine stops when ctx is cancelled.
func (b *InterruptBroadcaster) Watch(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				b.Notify()
			}
		}
	}()
}

// Subscribe claims the single subscription slot and returns the channel on
// which interrupts arrive, together with a function releasing the slot.
// A later Subscribe displaces an earlier one; in practice only the active
// turn subscribes.
func (b *InterruptBroadcaster) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	b.subscriber = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if b.subscriber == ch {
			b.subscriber = nil
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Notify delivers one interrupt to the current subscriber, if any. The send
// never blocks: a subscriber that already has a pending interrupt does not
// accumulate more.
func (b *InterruptBroadcaster) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscriber == nil {
		return
	}
	select {
	case b.subscriber <- struct{}{}:
	default:
	}
}
