package tracker

import (
	"sync"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := New()
	packet := "car_telemetry"

	// Test Initial State
	stats := tr.Snapshot()
	if len(stats) != 0 {
		t.Errorf("Expected empty stats, got %d", len(stats))
	}

	// Test Tracking
	tr.TrackDatagram()
	tr.TrackDatagram()
	tr.TrackDatagram()
	tr.TrackDatagram()
	tr.TrackDecoded(packet, 0, false)
	tr.TrackDecoded(packet, 3, true)
	tr.TrackDropped()
	tr.TrackUnknown("car_damage")

	// Verify Snapshot
	stats = tr.Snapshot()
	pStats, ok := stats[packet]
	if !ok {
		t.Fatalf("Expected stats for packet %s", packet)
	}

	if pStats.Received != 2 {
		t.Errorf("Expected 2 Received, got %d", pStats.Received)
	}
	if pStats.ZeroFilled != 3 {
		t.Errorf("Expected 3 ZeroFilled, got %d", pStats.ZeroFilled)
	}
	if pStats.Truncated != 1 {
		t.Errorf("Expected 1 Truncated, got %d", pStats.Truncated)
	}
	if pStats.FellBack != 1 {
		t.Errorf("Expected 1 FellBack, got %d", pStats.FellBack)
	}
	if stats["car_damage"].Received != 1 {
		t.Errorf("Expected unknown packet to be counted by type")
	}

	totals := tr.Totals()
	if totals.Datagrams != 4 || totals.Dropped != 1 || totals.Unknown != 1 {
		t.Errorf("Unexpected totals: %+v", totals)
	}
}

func TestReset(t *testing.T) {
	tr := New()
	tr.TrackDatagram()
	tr.TrackDecoded("lap_data", 1, false)
	tr.TrackDiscarded()

	tr.Reset()

	if len(tr.Snapshot()) != 0 {
		t.Error("Expected empty stats after reset")
	}
	if tr.Totals() != (Totals{}) {
		t.Errorf("Expected zero totals after reset, got %+v", tr.Totals())
	}
}

func TestConcurrentTracking(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				tr.TrackDatagram()
				tr.TrackDecoded("session", 0, false)
			}
		}()
	}
	wg.Wait()

	if got := tr.Snapshot()["session"].Received; got != 8000 {
		t.Errorf("Expected 8000, got %d", got)
	}
	if got := tr.Totals().Datagrams; got != 8000 {
		t.Errorf("Expected 8000 datagrams, got %d", got)
	}
}
