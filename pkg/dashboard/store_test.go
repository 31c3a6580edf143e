package dashboard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apexgo/pkg/sim"
)

func TestStore_Defaults(t *testing.T) {
	s := NewStore()
	assert.Equal(t, sim.DefaultSnapshot(), s.Current())
}

func TestStore_SingleWriter(t *testing.T) {
	s := NewStore()
	w1 := s.Acquire()

	assert.True(t, w1.Publish(sim.Snapshot{Speed: 100}))
	assert.Equal(t, uint16(100), s.Current().Speed)

	w2 := s.Acquire()
	assert.NotEqual(t, w1.Token(), w2.Token())
	assert.False(t, w1.Active())
	assert.False(t, w1.Publish(sim.Snapshot{Speed: 999}), "replaced writer must be rejected")
	assert.Equal(t, uint16(100), s.Current().Speed)

	assert.True(t, w2.Publish(sim.Snapshot{Speed: 200}))
	assert.Equal(t, uint16(200), s.Current().Speed)
}

func TestStore_RevokeThenReset(t *testing.T) {
	s := NewStore()
	w := s.Acquire()
	require.True(t, w.Publish(sim.Snapshot{Gear: 5, SessionEnded: true}))

	w.Revoke()
	w.Revoke()
	assert.False(t, w.Publish(sim.Snapshot{Gear: 6}))
	assert.Equal(t, int8(5), s.Current().Gear)

	s.Reset()
	assert.Equal(t, sim.DefaultSnapshot(), s.Current())

	// Revoking a writer that was already replaced leaves the new owner alone.
	w2 := s.Acquire()
	w.Revoke()
	assert.True(t, w2.Active())
}

func TestStore_SubscribeLatestWins(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	w := s.Acquire()
	for i := 1; i <= 10; i++ {
		w.Publish(sim.Snapshot{Speed: uint16(i)})
	}

	select {
	case snap := <-ch:
		assert.Equal(t, uint16(10), snap.Speed)
	case <-time.After(time.Second):
		t.Fatal("no notification")
	}

	select {
	case snap := <-ch:
		t.Fatalf("unexpected queued value %v", snap.Speed)
	default:
	}
}

func TestStore_CancelClosesChannel(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after cancel must not panic on the closed channel.
	w := s.Acquire()
	assert.NotPanics(t, func() { w.Publish(sim.Snapshot{}) })
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore()
	w := s.Acquire()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Current()
				// Writers always publish Speed == RPM; a torn read would differ.
				if snap.Speed != snap.RPM {
					t.Errorf("torn snapshot: speed=%d rpm=%d", snap.Speed, snap.RPM)
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		w.Publish(sim.Snapshot{Speed: uint16(i), RPM: uint16(i)})
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, uint64(1000), s.Version())
}
