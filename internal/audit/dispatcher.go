package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Dispatcher decouples the engine's login, session, and password flows from
// audit delivery: Emit enqueues and returns, a single worker goroutine
// forwards events to the sink in order. A nil *Dispatcher is valid and
// discards everything, which is how a disabled audit trail is represented.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool

	events  chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	closed  atomic.Bool
	once    sync.Once
}

// NewDispatcher starts the delivery worker. bufferSize is clamped to at
// least 1. A nil sink discards events.
func NewDispatcher(sink Sink, bufferSize int, dropIfFull bool) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: dropIfFull,
		events:     make(chan Event, bufferSize),
		done:       make(chan struct{}),
	}
	d.wg.Add(1)
	go d.deliver()
	return d
}

func (d *Dispatcher) deliver() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			d.drain()
			return
		}
	}
}

// drain flushes events that were already queued when Close was called.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit enqueues event for delivery. With dropIfFull set, a full buffer
// increments the drop counter instead of blocking the caller; otherwise Emit
// blocks until there is room, the context ends, or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.events <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close stops intake, flushes the queue, and waits for the worker to exit.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the buffer was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
