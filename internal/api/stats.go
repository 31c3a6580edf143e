package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"apexgo/pkg/tracker"
)

// HapticsCounters is implemented by haptics.Dispatcher.
type HapticsCounters interface {
	Emitted() uint64
	Dropped() uint64
}

type StatsHandler struct {
	tracker *tracker.Tracker
	haptics HapticsCounters
	started time.Time

	mu     sync.Mutex
	maxMem uint64
}

func NewStatsHandler(t *tracker.Tracker, h HapticsCounters) *StatsHandler {
	return &StatsHandler{
		tracker: t,
		haptics: h,
		started: time.Now(),
	}
}

type PacketStatsDTO struct {
	Received   int64 `json:"received"`
	ZeroFilled int64 `json:"zero_filled"`
	Truncated  int64 `json:"truncated"`
	FellBack   int64 `json:"fell_back"`
}

type TotalsDTO struct {
	Datagrams int64 `json:"datagrams"`
	Dropped   int64 `json:"dropped"`
	Unknown   int64 `json:"unknown"`
	Discarded int64 `json:"discarded"`
}

type HapticsDTO struct {
	Emitted uint64 `json:"emitted"`
	Dropped uint64 `json:"dropped"`
}

type DiagnosticsDTO struct {
	MemoryMB    uint64  `json:"memory_mb"`
	MemoryMaxMB uint64  `json:"memory_max_mb"`
	Goroutines  int     `json:"goroutines"`
	UptimeSec   float64 `json:"uptime_sec"`
}

type StatsResponse struct {
	Totals      TotalsDTO                 `json:"totals"`
	Packets     map[string]PacketStatsDTO `json:"packets"`
	Haptics     HapticsDTO                `json:"haptics"`
	Diagnostics DiagnosticsDTO            `json:"diagnostics"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	totals := h.tracker.Totals()
	resp := StatsResponse{
		Totals: TotalsDTO{
			Datagrams: totals.Datagrams,
			Dropped:   totals.Dropped,
			Unknown:   totals.Unknown,
			Discarded: totals.Discarded,
		},
		Packets:     make(map[string]PacketStatsDTO),
		Diagnostics: h.gatherDiagnostics(),
	}

	for name, s := range h.tracker.Snapshot() {
		resp.Packets[name] = PacketStatsDTO{
			Received:   s.Received,
			ZeroFilled: s.ZeroFilled,
			Truncated:  s.Truncated,
			FellBack:   s.FellBack,
		}
	}

	if h.haptics != nil {
		resp.Haptics = HapticsDTO{
			Emitted: h.haptics.Emitted(),
			Dropped: h.haptics.Dropped(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *StatsHandler) gatherDiagnostics() DiagnosticsDTO {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	h.mu.Lock()
	if ms.Sys > h.maxMem {
		h.maxMem = ms.Sys
	}
	maxMem := h.maxMem
	h.mu.Unlock()

	return DiagnosticsDTO{
		MemoryMB:    bToMb(ms.Sys),
		MemoryMaxMB: bToMb(maxMem),
		Goroutines:  runtime.NumGoroutine(),
		UptimeSec:   time.Since(h.started).Seconds(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
