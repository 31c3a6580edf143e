// Package udp is the datagram source for live telemetry. It binds one UDP
// socket and pushes each datagram to a handler on a single goroutine.
package udp

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/ipv4"
)

const (
	// DefaultAddress is the game's default telemetry target.
	DefaultAddress = ":20777"
	// MaxDatagramSize is the largest UDP payload.
	MaxDatagramSize = 65535
	// DefaultTakeover is how long the current sender must stay silent before
	// the sender it replaced may take the socket back.
	DefaultTakeover = 2 * time.Second
)

// Handler receives one datagram. buf is only valid for the duration of the
// call; the handler must copy anything it keeps.
type Handler func(buf []byte, from net.Addr)

// Listener reads datagrams from one UDP socket. One sender is tracked at a
// time: a new sender replaces the current one. The sender it replaced is
// ignored while the current one keeps sending, and may take over again once
// the current sender has been silent for the takeover period.
type Listener struct {
	addr    string
	maxSize int
	logger  *slog.Logger

	mu      sync.Mutex
	conn    net.PacketConn
	pc      *ipv4.PacketConn
	wg      sync.WaitGroup
	lastErr error

	listening atomic.Bool
	peer      atomic.Pointer[net.UDPAddr]
	dst       atomic.Pointer[net.IP]
	received  atomic.Uint64
	ignored   atomic.Uint64

	senderMu sync.Mutex
	previous *net.UDPAddr
	lastSeen time.Time
	takeover time.Duration
	now      func() time.Time
}

// NewListener creates a listener for addr ("host:port"). maxSize caps the
// read buffer; non-positive means MaxDatagramSize.
func NewListener(addr string, maxSize int, logger *slog.Logger) *Listener {
	if addr == "" {
		addr = DefaultAddress
	}
	if maxSize <= 0 || maxSize > MaxDatagramSize {
		maxSize = MaxDatagramSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		addr:     addr,
		maxSize:  maxSize,
		logger:   logger.With("component", "udp"),
		takeover: DefaultTakeover,
		now:      time.Now,
	}
}

// Start binds the socket and starts the read loop. A bind failure is
// returned and kept in LastError. Starting a running listener is a no-op.
func (l *Listener) Start(h Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		return nil
	}

	conn, err := net.ListenPacket("udp4", l.addr)
	if err != nil {
		l.lastErr = fmt.Errorf("bind %s: %w", l.addr, err)
		l.logger.Error("UDP bind failed", "addr", l.addr, "error", err)
		return l.lastErr
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetControlMessage(ipv4.FlagDst, true); err != nil {
		// Not every platform reports the destination address.
		l.logger.Debug("UDP destination control messages unavailable", "error", err)
	}

	l.conn = conn
	l.pc = pc
	l.lastErr = nil
	l.peer.Store(nil)
	l.dst.Store(nil)
	l.senderMu.Lock()
	l.previous = nil
	l.lastSeen = time.Time{}
	l.senderMu.Unlock()
	l.listening.Store(true)

	l.logger.Info("UDP listener started", "addr", conn.LocalAddr().String())

	l.wg.Add(1)
	go l.readLoop(pc, h)
	return nil
}

// Stop closes the socket and waits for the read loop to exit. A datagram
// already inside the handler finishes first. Stop is idempotent.
func (l *Listener) Stop() {
	l.mu.Lock()
	conn := l.conn
	l.conn = nil
	l.pc = nil
	l.mu.Unlock()

	if conn == nil {
		return
	}
	l.listening.Store(false)
	if err := conn.Close(); err != nil {
		l.logger.Debug("UDP close", "error", err)
	}
	l.wg.Wait()
	l.logger.Info("UDP listener stopped", "received", l.received.Load(), "ignored", l.ignored.Load())
}

func (l *Listener) readLoop(pc *ipv4.PacketConn, h Handler) {
	defer l.wg.Done()
	buf := make([]byte, l.maxSize)

	for {
		n, cm, src, err := pc.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.fail(err)
			return
		}
		if cm != nil && cm.Dst != nil {
			dst := cm.Dst
			l.dst.Store(&dst)
		}
		if !l.accept(src) {
			l.ignored.Add(1)
			continue
		}
		l.received.Add(1)
		h(buf[:n], src)
	}
}

func (l *Listener) fail(err error) {
	l.mu.Lock()
	l.lastErr = fmt.Errorf("read: %w", err)
	l.mu.Unlock()
	l.listening.Store(false)
	l.logger.Error("UDP read failed", "error", err)
}

// accept applies the newest-sender-wins rule. Only the current sender and
// the one it replaced are remembered.
func (l *Listener) accept(src net.Addr) bool {
	from, ok := src.(*net.UDPAddr)
	if !ok {
		return true
	}

	l.senderMu.Lock()
	defer l.senderMu.Unlock()

	now := l.now()
	cur := l.peer.Load()
	switch {
	case cur == nil:
		l.logger.Info("UDP sender connected", "peer", from.String())
	case cur.String() == from.String():
		l.lastSeen = now
		return true
	case l.previous != nil && l.previous.String() == from.String() && now.Sub(l.lastSeen) < l.takeover:
		return false
	default:
		l.logger.Info("UDP sender replaced", "previous", cur.String(), "current", from.String())
	}
	l.previous = cur
	l.lastSeen = now
	l.peer.Store(from)
	return true
}

// Listening reports whether the socket is bound and reading.
func (l *Listener) Listening() bool {
	return l.listening.Load()
}

// LastError returns the most recent bind or read failure.
func (l *Listener) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// LocalAddr returns the bound address, or nil when stopped.
func (l *Listener) LocalAddr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

// Peer returns the current sender, or nil before the first datagram.
func (l *Listener) Peer() net.Addr {
	if p := l.peer.Load(); p != nil {
		return p
	}
	return nil
}

// Destination returns the local IP the sender addressed, when the platform
// reports it. It is the address to enter in the game's telemetry settings.
func (l *Listener) Destination() net.IP {
	if d := l.dst.Load(); d != nil {
		return *d
	}
	return nil
}

// Received returns the number of datagrams handed to the handler.
func (l *Listener) Received() uint64 {
	return l.received.Load()
}

// Ignored returns the number of datagrams dropped from a replaced sender.
func (l *Listener) Ignored() uint64 {
	return l.ignored.Load()
}
