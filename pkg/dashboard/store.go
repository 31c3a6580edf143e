// Package dashboard holds the one observable Snapshot. It has at most one
// writer at a time and any number of readers.
package dashboard

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"apexgo/pkg/sim"
)

// Store publishes whole snapshots. Readers load the current pointer without
// locking; writers hold a token and are serialised by mu.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[sim.Snapshot]
	owner   string
	version atomic.Uint64

	subMu  sync.Mutex
	subs   map[int]chan sim.Snapshot
	nextID int
}

// NewStore returns a store holding sim.DefaultSnapshot.
func NewStore() *Store {
	s := &Store{subs: make(map[int]chan sim.Snapshot)}
	def := sim.DefaultSnapshot()
	s.current.Store(&def)
	return s
}

// Current returns the latest published snapshot.
func (s *Store) Current() sim.Snapshot {
	return *s.current.Load()
}

// Version increments on every accepted publish and reset.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Writer is a revocable right to publish into a Store.
type Writer struct {
	store *Store
	token string
}

// Acquire hands out a new writer and revokes any previous one.
func (s *Store) Acquire() *Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner != "" {
		slog.Debug("Dashboard writer replaced", "previous", s.owner)
	}
	s.owner = uuid.NewString()
	return &Writer{store: s, token: s.owner}
}

// Token identifies the writer in logs and status output.
func (w *Writer) Token() string {
	return w.token
}

// Publish stores snap if w still owns the store. Subscribers are notified in
// publish order; notification never blocks on readers.
func (w *Writer) Publish(snap sim.Snapshot) bool {
	s := w.store
	s.mu.Lock()
	if s.owner != w.token {
		s.mu.Unlock()
		return false
	}
	s.current.Store(&snap)
	s.version.Add(1)
	s.notify(snap)
	s.mu.Unlock()
	return true
}

// Revoke invalidates w. Publishes already past the ownership check complete;
// later ones are rejected. Revoking twice is a no-op.
func (w *Writer) Revoke() {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == w.token {
		s.owner = ""
	}
}

// Active reports whether w still owns the store.
func (w *Writer) Active() bool {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner == w.token
}

// Reset revokes any writer and restores sim.DefaultSnapshot.
func (s *Store) Reset() {
	s.mu.Lock()
	s.owner = ""
	def := sim.DefaultSnapshot()
	s.current.Store(&def)
	s.version.Add(1)
	s.notify(def)
	s.mu.Unlock()
}

// Subscribe returns a channel that always holds the most recent snapshot not
// yet received. Slow readers see fewer updates, never stale ones. The cancel
// func closes the channel.
func (s *Store) Subscribe() (<-chan sim.Snapshot, func()) {
	ch := make(chan sim.Snapshot, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) notify(snap sim.Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		// Drain the stale value so the send below never blocks.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
