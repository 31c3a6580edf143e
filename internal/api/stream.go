package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"apexgo/pkg/haptics"
	"apexgo/pkg/sim"
)

const (
	writeWait       = 2 * time.Second
	pongWait        = 30 * time.Second
	pingPeriod      = pongWait * 9 / 10
	clientQueueSize = 8
)

// Message types sent on the stream.
const (
	MessageSnapshot  = "snapshot"
	MessageGearShift = "gear_shift"
)

var cborEnc cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.TextMarshaler = cbor.TextMarshalerTextString
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	cborEnc, err = opts.EncMode()
	if err != nil {
		panic("api: CBOR encoder initialization failed: " + err.Error())
	}
}

// StreamMessage is one frame on the dashboard stream.
type StreamMessage struct {
	Type string `json:"type" cbor:"type"`
	Data any    `json:"data,omitempty" cbor:"data,omitempty"`
}

// GearShiftDTO is the payload of a gear_shift message.
type GearShiftDTO struct {
	Upshift  bool `json:"upshift" cbor:"upshift"`
	Gear     int8 `json:"gear" cbor:"gear"`
	Previous int8 `json:"previous" cbor:"previous"`
	Clicks   int  `json:"clicks" cbor:"clicks"`
}

// SnapshotFeed is the subscribable side of the dashboard store.
type SnapshotFeed interface {
	SnapshotSource
	Subscribe() (<-chan sim.Snapshot, func())
}

type encoded struct {
	json []byte
	cbor []byte
}

type client struct {
	id     string
	conn   *websocket.Conn
	binary bool
	send   chan []byte
}

// Stream pushes snapshots and gear-shift events to WebSocket clients. Each
// client has a bounded queue; a client that cannot keep up loses messages
// rather than slowing the others. Stream is also a haptics.Sink.
type Stream struct {
	feed     SnapshotFeed
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

func NewStream(feed SnapshotFeed, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		feed:   feed,
		logger: logger.With("component", "stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard is served from localhost and from LAN devices.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Run forwards store updates to clients until ctx is done.
func (s *Stream) Run(ctx context.Context) {
	updates, cancel := s.feed.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			s.broadcastSnapshot(&snap)
		}
	}
}

// Handle broadcasts a gear-shift event.
func (s *Stream) Handle(e haptics.Event) {
	msg, err := encode(StreamMessage{Type: MessageGearShift, Data: GearShiftDTO{
		Upshift:  e.Upshift,
		Gear:     e.Gear,
		Previous: e.Previous,
		Clicks:   e.Clicks(),
	}})
	if err != nil {
		s.logger.Error("Failed to encode gear shift", "error", err)
		return
	}
	s.broadcast(msg)
}

// Clients returns the number of connected clients.
func (s *Stream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		binary: r.URL.Query().Get("format") == "cbor",
		send:   make(chan []byte, clientQueueSize),
	}

	snap := s.feed.Current()
	first, err := encodeSnapshot(&snap)
	if err != nil {
		s.logger.Error("Failed to encode snapshot", "error", err)
		conn.Close()
		return
	}
	c.send <- c.pick(first)

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.logger.Info("Stream client connected", "client", c.id, "remote", r.RemoteAddr, "cbor", c.binary)

	go s.writeLoop(c)
	s.readLoop(c)
}

func (c *client) pick(m encoded) []byte {
	if c.binary {
		return m.cbor
	}
	return m.json
}

// readLoop discards client input and detects disconnects.
func (s *Stream) readLoop(c *client) {
	defer s.remove(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Stream) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	kind := websocket.TextMessage
	if c.binary {
		kind = websocket.BinaryMessage
	}
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(kind, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Stream) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	if ok {
		delete(s.clients, c.id)
		close(c.send)
	}
	s.mu.Unlock()
	if ok {
		s.logger.Info("Stream client disconnected", "client", c.id)
	}
}

func (s *Stream) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		delete(s.clients, id)
		close(c.send)
	}
}

func (s *Stream) broadcastSnapshot(snap *sim.Snapshot) {
	msg, err := encodeSnapshot(snap)
	if err != nil {
		s.logger.Error("Failed to encode snapshot", "error", err)
		return
	}
	s.broadcast(msg)
}

func (s *Stream) broadcast(m encoded) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		select {
		case c.send <- c.pick(m):
		default:
			s.logger.Debug("Stream client queue full, message dropped", "client", c.id)
		}
	}
}

func encodeSnapshot(snap *sim.Snapshot) (encoded, error) {
	return encode(StreamMessage{Type: MessageSnapshot, Data: NewSnapshotResponse(snap)})
}

func encode(m StreamMessage) (encoded, error) {
	j, err := json.Marshal(m)
	if err != nil {
		return encoded{}, err
	}
	c, err := cborEnc.Marshal(m)
	if err != nil {
		return encoded{}, err
	}
	return encoded{json: j, cbor: c}, nil
}
