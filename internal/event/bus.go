package event

import "sync"

// Bus is an unbounded multi-producer, single-consumer event queue. Every
// published event is delivered exactly once; events from one producer are
// delivered in the order they were published. Producers never block, so a
// slow consumer cannot stall an executor.
type Bus struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool
}

// NewBus creates an open bus
func NewBus() *Bus {
	b := &Bus{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish appends an event for the consumer. Events published after Close
// are dropped.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.queue = append(b.queue, e)
	b.cond.Signal()
}

// Next blocks until an event is available and returns it. It returns
// ok=false once the bus is closed and fully drained.
func (b *Bus) Next() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.queue) == 0 && !b.closed {
		b.cond.Wait()
	}
	if len(b.queue) == 0 {
		return nil, false
	}

	e := b.queue[0]
	b.queue = b.queue[1:]
	return e, true
}

// Close marks the bus closed. Already-published events remain consumable;
// the consumer sees them all before Next reports exhaustion.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}
