// Package realtime implements the per-user addressed push channel and
// market-update broadcast of spec §6, adapted from the teacher's
// internal/websocket Hub (register/unregister/broadcast channels, a
// sync.Pool for JSON buffers) but re-targeted at per-user addressing
// instead of a single global broadcast, since spec §6 requires events
// delivered to a specific userId.
package realtime

import (
	"bytes"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// json is jsoniter configured compatibly with encoding/json, closing the
// gap between the teacher's declared-but-unused json-iterator/go dependency
// and its actual wiring.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// envelope is the wire shape of every push: a type tag plus the named
// payload struct from internal/models/events.go.
type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one connected websocket subscriber, identified by the user it
// authenticated as.
type Client struct {
	UserID string
	send   chan []byte
}

// Hub fans out per-user events and broadcasts, grounded on the teacher's
// Hub (register/unregister/broadcast channels guarded by sync.RWMutex,
// slow-client eviction on a full send buffer).
type Hub struct {
	log *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// NewClient creates a client bound to userID, ready to be registered with
// Hub.Register and drained via Client.Send().
func (h *Hub) NewClient(userID string) *Client {
	return &Client{UserID: userID, send: make(chan []byte, 256)}
}

func (c *Client) Send() <-chan []byte { return c.send }

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Run processes register/unregister until done is closed; with a nil done
// it runs for the life of the process.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			if h.byUser[c.UserID] == nil {
				h.byUser[c.UserID] = make(map[*Client]struct{})
			}
			h.byUser[c.UserID][c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.removeClient(c)

		case <-done:
			return
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if set, ok := h.byUser[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	close(c.send)
}

func (h *Hub) encode(msgType string, data interface{}) []byte {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(envelope{Type: msgType, Data: data}); err != nil {
		h.log.Error("realtime: failed to encode event", zap.String("type", msgType), zap.Error(err))
		return nil
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

// Send pushes msgType/data to every connection registered for userID. A
// slow client whose send buffer is full is dropped rather than allowed to
// block the serialization domain (spec §5: "fire-and-forget").
func (h *Hub) Send(userID, msgType string, data interface{}) {
	payload := h.encode(msgType, data)
	if payload == nil {
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.byUser[userID]))
	for c := range h.byUser[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.log.Warn("realtime: dropping slow client", zap.String("userId", userID))
		h.removeClient(c)
	}
}

// Broadcast pushes msgType/data to every connected client, used for market
// updates (spec §4.5's "broadcast a market update").
func (h *Hub) Broadcast(msgType string, data interface{}) {
	payload := h.encode(msgType, data)
	if payload == nil {
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.removeClient(c)
	}
}

// ClientCount reports the number of currently registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
