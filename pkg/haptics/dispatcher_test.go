package haptics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestNewEvent(t *testing.T) {
	up := NewEvent(3, 4, time.Time{})
	assert.True(t, up.Upshift)
	assert.Equal(t, 6, up.Clicks())

	down := NewEvent(4, 3, time.Time{})
	assert.False(t, down.Upshift)
	assert.Equal(t, 4, down.Clicks())

	fromReverse := NewEvent(-1, 0, time.Time{})
	assert.True(t, fromReverse.Upshift)
}

func TestDispatcher_Delivers(t *testing.T) {
	d := NewDispatcher(4)
	d.Start()
	defer d.Close()

	sink := &recordingSink{}
	d.Register(sink)

	d.Emit(NewEvent(1, 2, time.Now()))
	d.Emit(NewEvent(2, 3, time.Now()))

	assert.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(2), d.Emitted())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	// Not started: nothing drains the queue.
	d := NewDispatcher(2)
	defer d.Close()

	for i := 0; i < 5; i++ {
		d.Emit(NewEvent(int8(i), int8(i+1), time.Now()))
	}
	assert.Equal(t, uint64(2), d.Emitted())
	assert.Equal(t, uint64(3), d.Dropped())
}

func TestDispatcher_EmitNeverBlocksOnSlowSink(t *testing.T) {
	d := NewDispatcher(1)
	d.Start()
	defer d.Close()

	release := make(chan struct{})
	d.Register(SinkFunc(func(Event) { <-release }))
	defer close(release)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			d.Emit(Event{Gear: int8(i % 8)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked")
	}
	assert.Positive(t, d.Dropped())
}

func TestDispatcher_Unregister(t *testing.T) {
	d := NewDispatcher(4)
	d.Start()
	defer d.Close()

	sink := &recordingSink{}
	remove := d.Register(sink)
	remove()

	d.Emit(Event{Upshift: true})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, sink.count())
}

func TestDispatcher_CloseIdempotent(t *testing.T) {
	d := NewDispatcher(0)
	d.Start()
	d.Close()
	d.Close()

	// Emit after close is ignored.
	d.Emit(Event{})
	assert.Equal(t, uint64(0), d.Emitted())
}
