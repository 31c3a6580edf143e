package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks ingestion statistics per packet type.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*PacketStats

	datagrams int64
	dropped   int64
	unknown   int64
	discarded int64
}

// PacketStats holds counters for one packet type.
// Fields are accessed atomically.
type PacketStats struct {
	Received   int64
	ZeroFilled int64 // fields that resolved to zero on a short read
	Truncated  int64 // datagrams with at least one zero-filled field
	FellBack   int64 // datagrams decoded with the fallback layout
}

// Totals are the stream-level counters.
type Totals struct {
	Datagrams int64 // everything the listener delivered
	Dropped   int64 // shorter than a header
	Unknown   int64 // packet types without a decoder
	Discarded int64 // decoded after the run was stopped
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*PacketStats),
	}
}

// getStats returns the stats object for a packet type, creating it if needed.
func (t *Tracker) getStats(packet string) *PacketStats {
	t.mu.RLock()
	s, ok := t.stats[packet]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[packet]; ok {
		return s
	}
	s = &PacketStats{}
	t.stats[packet] = s
	return s
}

// TrackDatagram counts one received datagram.
func (t *Tracker) TrackDatagram() {
	atomic.AddInt64(&t.datagrams, 1)
}

// TrackDropped counts a datagram too short to carry a header.
func (t *Tracker) TrackDropped() {
	atomic.AddInt64(&t.dropped, 1)
}

// TrackUnknown counts a packet type without a decoder.
func (t *Tracker) TrackUnknown(packet string) {
	atomic.AddInt64(&t.unknown, 1)
	atomic.AddInt64(&t.getStats(packet).Received, 1)
}

// TrackDiscarded counts a decoded datagram whose run had already ended.
func (t *Tracker) TrackDiscarded() {
	atomic.AddInt64(&t.discarded, 1)
}

// TrackDecoded counts a decoded packet and its zero-filled fields.
func (t *Tracker) TrackDecoded(packet string, zeroFilled int, fellBack bool) {
	s := t.getStats(packet)
	atomic.AddInt64(&s.Received, 1)
	if zeroFilled > 0 {
		atomic.AddInt64(&s.ZeroFilled, int64(zeroFilled))
		atomic.AddInt64(&s.Truncated, 1)
	}
	if fellBack {
		atomic.AddInt64(&s.FellBack, 1)
	}
}

// Totals returns the stream-level counters.
func (t *Tracker) Totals() Totals {
	return Totals{
		Datagrams: atomic.LoadInt64(&t.datagrams),
		Dropped:   atomic.LoadInt64(&t.dropped),
		Unknown:   atomic.LoadInt64(&t.unknown),
		Discarded: atomic.LoadInt64(&t.discarded),
	}
}

// Snapshot returns a copy of the per-packet stats.
func (t *Tracker) Snapshot() map[string]PacketStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]PacketStats)
	for k, v := range t.stats {
		result[k] = PacketStats{
			Received:   atomic.LoadInt64(&v.Received),
			ZeroFilled: atomic.LoadInt64(&v.ZeroFilled),
			Truncated:  atomic.LoadInt64(&v.Truncated),
			FellBack:   atomic.LoadInt64(&v.FellBack),
		}
	}
	return result
}

// Reset clears all counters.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = make(map[string]*PacketStats)
	atomic.StoreInt64(&t.datagrams, 0)
	atomic.StoreInt64(&t.dropped, 0)
	atomic.StoreInt64(&t.unknown, 0)
	atomic.StoreInt64(&t.discarded, 0)
}
