package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xelth-com/tradetrack/internal/notify"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send small control frames.
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer in front of the API
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Closed by the hub once the client is in its map.
	ready chan struct{}

	ID     string
	UserID string
}

// ControlMessage is what a browser may send
type ControlMessage struct {
	Type  string `json:"type"`
	MsgID string `json:"msgId,omitempty"`
}

// SnapshotFunc supplies the current bus state for a newly connected client.
type SnapshotFunc func() (map[notify.Topic][]notify.Notification, map[notify.DataType]time.Time)

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("ws read", zap.String("client", c.ID), zap.Error(err))
			}
			break
		}

		var msg ControlMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "PING" {
			c.hub.SendToClient(c.ID, map[string]string{"type": "PONG", "msgId": msg.MsgID})
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades the request and streams bus events to the peer.
// The first frame is a snapshot of the pending queues and refresh stamps.
func ServeWs(hub *Hub, userID string, snapshot SnapshotFunc, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn("ws upgrade", zap.Error(err))
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), ready: make(chan struct{}), ID: "web_" + uuid.NewString(), UserID: userID}

	// The snapshot is queued before registering so it is always the first frame
	if snapshot != nil {
		pending, refreshed := snapshot()
		frame, err := json.Marshal(map[string]interface{}{
			"type":      "snapshot",
			"pending":   pending,
			"refreshed": refreshed,
		})
		if err != nil {
			hub.log.Error("marshal ws snapshot", zap.Error(err))
		} else {
			client.send <- frame
		}
	}

	select {
	case client.hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}
	// Broadcasts issued after ServeWs returns reach this client
	select {
	case <-client.ready:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
