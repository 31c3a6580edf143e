// Package haptics carries gear-shift events from producers to feedback sinks
// without ever blocking the producer.
package haptics

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Event is one gear change.
type Event struct {
	Upshift  bool
	Gear     int8
	Previous int8
	At       time.Time
}

// Clicks is the number of pulses a wrist device plays for the event. Upshifts
// feel heavier than downshifts.
func (e Event) Clicks() int {
	if e.Upshift {
		return 6
	}
	return 4
}

// NewEvent builds the event for a change from previous to gear.
func NewEvent(previous, gear int8, at time.Time) Event {
	return Event{Upshift: gear > previous, Gear: gear, Previous: previous, At: at}
}

// Emitter accepts events from producers. Emit must not block.
type Emitter interface {
	Emit(e Event)
}

// Sink plays or forwards events. Sinks run on the dispatcher goroutine.
type Sink interface {
	Handle(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

// Handle calls f(e).
func (f SinkFunc) Handle(e Event) { f(e) }

// Discard is an Emitter that drops every event.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(Event) {}

// DefaultQueueSize is used when NewDispatcher gets a non-positive size.
const DefaultQueueSize = 16

// Dispatcher fans events out to sinks from a bounded queue. When the queue
// is full the event is dropped and counted.
type Dispatcher struct {
	mu    sync.RWMutex
	sinks map[int]Sink
	next  int

	queue   chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	start   sync.Once
	stop    sync.Once
	dropped atomic.Uint64
	emitted atomic.Uint64
}

// NewDispatcher creates a dispatcher; call Start to begin delivery.
func NewDispatcher(queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		sinks: make(map[int]Sink),
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}
}

// Register adds a sink and returns a func that removes it.
func (d *Dispatcher) Register(s Sink) func() {
	d.mu.Lock()
	id := d.next
	d.next++
	d.sinks[id] = s
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.sinks, id)
		d.mu.Unlock()
	}
}

// Emit queues e. It never blocks.
func (d *Dispatcher) Emit(e Event) {
	select {
	case <-d.done:
		return
	default:
	}
	select {
	case d.queue <- e:
		d.emitted.Add(1)
	default:
		n := d.dropped.Add(1)
		slog.Debug("Haptics: queue full, dropping event", "upshift", e.Upshift, "gear", e.Gear, "dropped", n)
	}
}

// Start launches the delivery goroutine. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		d.wg.Add(1)
		go d.loop()
	})
}

// Close stops delivery and waits for the goroutine. Queued events are
// discarded.
func (d *Dispatcher) Close() {
	d.stop.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
}

// Dropped returns how many events were lost to a full queue.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Emitted returns how many events were accepted.
func (d *Dispatcher) Emitted() uint64 {
	return d.emitted.Load()
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case e := <-d.queue:
			d.deliver(e)
		}
	}
}

func (d *Dispatcher) deliver(e Event) {
	d.mu.RLock()
	sinks := make([]Sink, 0, len(d.sinks))
	for _, s := range d.sinks {
		sinks = append(sinks, s)
	}
	d.mu.RUnlock()

	for _, s := range sinks {
		s.Handle(e)
	}
}

// LogSink logs every event at debug level.
type LogSink struct {
	Logger *slog.Logger
}

// Handle logs e.
func (l LogSink) Handle(e Event) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Gear shift", "upshift", e.Upshift, "from", e.Previous, "to", e.Gear, "clicks", e.Clicks())
}
