package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/moneypit/moneypit/server/internal/metrics"
	"github.com/moneypit/moneypit/server/internal/service"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxFrameBytes caps one inbound SimulateRequest frame.
	maxFrameBytes = 4096
)

// Event names.
const (
	EventReady   = "ready"
	EventVerdict = "verdict"
	EventReload  = "reload"
	EventError   = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  maxFrameBytes,
	WriteBufferSize: 4096,
	// Allow all origins; apply CORS at the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// SnapshotInfo describes the coefficient snapshot in ready and reload events.
type SnapshotInfo struct {
	Generation          uint64 `json:"generation"`
	CoefficientsVersion string `json:"coefficients_version"`
}

// Hub serves the interactive simulator. Each client sends SimulateRequest
// frames and receives one verdict (or error) event per frame. When the
// coefficients are reloaded every client is told and its last request is
// re-evaluated against the new snapshot.
type Hub struct {
	svc     *service.Service
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte

	// mu serializes evaluate+deliver for this client and guards last, so a
	// reload re-evaluation never lands after the answer to a newer frame.
	mu   sync.Mutex
	last *service.SimulateRequest
}

// New creates a Hub evaluating through svc. m may be nil.
func New(svc *service.Service, m *metrics.Metrics) *Hub {
	return &Hub{
		svc:     svc,
		metrics: m,
		clients: make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)

	if data, err := json.Marshal(Message{Event: EventReady, Data: h.info()}); err == nil {
		h.deliver(c, data)
	}

	go c.writePump()
	h.readPump(r.Context(), c) // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Reloaded tells every client about the new snapshot and re-runs each
// client's most recent request against it.
func (h *Hub) Reloaded(ctx context.Context) {
	data, err := json.Marshal(Message{Event: EventReload, Data: h.info()})
	if err != nil {
		return
	}
	for _, c := range h.targets() {
		c.mu.Lock()
		if h.deliver(c, data) && c.last != nil {
			h.evaluate(ctx, c, *c.last)
		}
		c.mu.Unlock()
	}
}

// --- internal ---------------------------------------------------------------

func (h *Hub) info() SnapshotInfo {
	snap := h.svc.Holder().Current()
	return SnapshotInfo{Generation: snap.Generation, CoefficientsVersion: snap.Store.Version()}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.report(n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.report(n)
}

func (h *Hub) report(n int) {
	if h.metrics != nil {
		h.metrics.SetWSClients(n)
	}
}

func (h *Hub) targets() []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// deliver queues data for c. A client whose buffer is full is disconnected.
// It reports whether the message was queued.
func (h *Hub) deliver(c *client, data []byte) bool {
	h.mu.RLock()
	_, live := h.clients[c]
	if live {
		select {
		case c.send <- data:
			h.mu.RUnlock()
			return true
		default:
		}
	}
	h.mu.RUnlock()

	if live {
		// Outgoing buffer is full; drop the client.
		h.unregister(c)
	}
	return false
}

func (h *Hub) evaluate(ctx context.Context, c *client, req service.SimulateRequest) {
	msg := Message{Event: EventVerdict}
	resp, err := h.svc.Run(ctx, service.ModeWS, req)
	switch {
	case err == nil:
		msg.Data = resp
	case errors.Is(err, service.ErrInvalid):
		msg = Message{Event: EventError, Error: err.Error()}
	default:
		slog.Error("ws: evaluation failed", "err", err)
		msg = Message{Event: EventError, Error: "evaluation failed: coefficient configuration error"}
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.deliver(c, data)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	h.report(0)
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads SimulateRequest frames and answers each one. Pong frames
// extend the read deadline. Blocks until the connection closes.
func (h *Hub) readPump(ctx context.Context, c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxFrameBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		req, err := decodeFrame(frame)
		if err != nil {
			if data, err := json.Marshal(Message{Event: EventError, Error: err.Error()}); err == nil {
				h.deliver(c, data)
			}
			continue
		}
		c.mu.Lock()
		c.last = &req
		h.evaluate(ctx, c, req)
		c.mu.Unlock()
	}
}

// decodeFrame parses one SimulateRequest frame, rejecting unknown fields as
// the REST API does.
func decodeFrame(frame []byte) (service.SimulateRequest, error) {
	var req service.SimulateRequest
	dec := json.NewDecoder(bytes.NewReader(frame))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode frame: %w", err)
	}
	return req, nil
}
