package canbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.einride.tech/can"

	"apexgo/pkg/sim"
)

func TestFrames(t *testing.T) {
	s := sim.DefaultSnapshot()
	s.Speed = 312
	s.RPM = 11800
	s.Gear = -1

	frames := Frames(s)
	require.Len(t, frames, 4)

	byID := map[uint32]can.Frame{}
	for _, f := range frames {
		require.NoError(t, f.Validate())
		byID[f.ID] = f
	}

	assert.Equal(t, uint8(1), byID[IDSpeed].Length)
	assert.Equal(t, uint8(255), byID[IDSpeed].Data[0], "speed clamps to one byte")

	wide := byID[IDSpeedWide]
	assert.Equal(t, uint8(2), wide.Length)
	assert.Equal(t, []byte{0x01, 0x38}, wide.Data[:2])

	// 11800*4 = 47200 = 0xB860
	rpm := byID[IDRPM]
	assert.Equal(t, []byte{0xB8, 0x60}, rpm.Data[:2])

	assert.Equal(t, uint8(0xFF), byID[IDGear].Data[0], "reverse is -1 as a signed byte")
}

func TestFrames_RPMSaturates(t *testing.T) {
	s := sim.DefaultSnapshot()
	s.RPM = 20000
	for _, f := range Frames(s) {
		if f.ID == IDRPM {
			assert.Equal(t, []byte{0xFF, 0xFF}, f.Data[:2])
		}
	}
}

type fakeSource struct {
	mu   sync.Mutex
	snap sim.Snapshot
}

func (f *fakeSource) Current() sim.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

type fakeTx struct {
	mu     sync.Mutex
	frames []can.Frame
	err    error
}

func (f *fakeTx) TransmitFrame(_ context.Context, fr can.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeTx) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestForwarder_Send(t *testing.T) {
	src := &fakeSource{snap: sim.DefaultSnapshot()}
	tx := &fakeTx{}
	fw := NewForwarder(src, tx, time.Millisecond, nil)

	fw.Send(context.Background())
	assert.Zero(t, tx.count(), "idle store is not mirrored")

	src.snap.Source = sim.SourceLive
	src.snap.Speed = 100
	fw.Send(context.Background())
	assert.Equal(t, 4, tx.count())
	assert.Equal(t, uint64(4), fw.Sent())

	tx.err = errors.New("bus off")
	fw.Send(context.Background())
	assert.Equal(t, uint64(4), fw.Failed())
	assert.Equal(t, uint64(4), fw.Sent())
}

func TestForwarder_Run(t *testing.T) {
	src := &fakeSource{snap: sim.DefaultSnapshot()}
	src.snap.Source = sim.SourceDemo
	tx := &fakeTx{}
	fw := NewForwarder(src, tx, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fw.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return tx.count() >= 8 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
