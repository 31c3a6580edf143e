package canbus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"apexgo/pkg/sim"
)

// Source provides the snapshot to mirror.
type Source interface {
	Current() sim.Snapshot
}

// Transmitter sends one frame.
type Transmitter interface {
	TransmitFrame(ctx context.Context, f can.Frame) error
}

// Dial opens a raw socketcan connection on iface (for example "vcan0").
func Dial(ctx context.Context, iface string) (Transmitter, io.Closer, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", iface, err)
	}
	return socketcan.NewTransmitter(conn), conn, nil
}

// Forwarder periodically transmits the current snapshot.
type Forwarder struct {
	src      Source
	tx       Transmitter
	interval time.Duration
	logger   *slog.Logger

	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewForwarder creates a forwarder. It does nothing until Run.
func NewForwarder(src Source, tx Transmitter, interval time.Duration, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		src:      src,
		tx:       tx,
		interval: interval,
		logger:   logger.With("component", "canbus"),
	}
}

// Run transmits on every interval until ctx is done. Nothing is sent while
// no producer is running.
func (f *Forwarder) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("CAN forwarder started", "interval", f.interval)
	defer f.logger.Info("CAN forwarder stopped", "sent", f.sent.Load(), "failed", f.failed.Load())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Send(ctx)
		}
	}
}

// Send transmits the current snapshot once.
func (f *Forwarder) Send(ctx context.Context) {
	snap := f.src.Current()
	if snap.Source == sim.SourceNone {
		return
	}
	for _, frame := range Frames(snap) {
		if err := f.tx.TransmitFrame(ctx, frame); err != nil {
			// Log the first failure only.
			if f.failed.Add(1) == 1 {
				f.logger.Warn("CAN transmit failed", "id", frame.ID, "error", err)
			}
			continue
		}
		f.sent.Add(1)
	}
}

// Sent returns the number of frames transmitted.
func (f *Forwarder) Sent() uint64 { return f.sent.Load() }

// Failed returns the number of frames that could not be transmitted.
func (f *Forwarder) Failed() uint64 { return f.failed.Load() }
