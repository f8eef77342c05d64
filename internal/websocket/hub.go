package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/xelth-com/tradetrack/internal/notify"
)

// Hub maintains the set of active browser clients and fans out bus events
type Hub struct {
	// Registered clients map: ClientID -> Client
	clients map[string]*Client

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Outbound frames for every client
	broadcast chan []byte

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	log *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[string]*Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			// Same client id reconnecting replaces the old connection
			if old, ok := h.clients[client.ID]; ok {
				close(old.send)
			}
			h.clients[client.ID] = client
			h.mu.Unlock()
			if client.ready != nil {
				close(client.ready)
			}
			h.log.Debug("ws client connected", zap.String("client", client.ID), zap.String("user", client.UserID))

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.ID]; ok && cur == client {
				delete(h.clients, client.ID)
				close(client.send)
				h.log.Debug("ws client disconnected", zap.String("client", client.ID))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Buffer full, drop the client
					close(c.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish implements notify.Publisher by broadcasting the event as JSON
func (h *Hub) Publish(ev notify.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal bus event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("ws broadcast queue full, event dropped", zap.String("type", string(ev.Type)))
	}
}

// SendToClient sends a message to a specific client
func (h *Hub) SendToClient(clientID string, message interface{}) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[clientID]
	if !ok {
		return false
	}

	jsonMsg, err := json.Marshal(message)
	if err != nil {
		h.log.Error("marshal ws message", zap.Error(err))
		return false
	}

	select {
	case client.send <- jsonMsg:
		return true
	default:
		return false
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
