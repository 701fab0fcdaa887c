package realtime

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventNewNotification     = "new_notification"
	EventNotificationRefresh = "notification_refresh"
	EventNewAuditLog         = "new-audit-log"

	sendBuffer   = 32
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = (pongTimeout * 9) / 10
)

// Frame is the only message shape sent to clients.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func UserRoom(employeeID int64) string {
	return "user:" + strconv.FormatInt(employeeID, 10)
}

func RoleRoom(role string) string {
	return "role:" + role
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	rooms  []string
	mu     sync.Mutex
	closed bool
}

// offer queues msg without blocking; false means the buffer is full.
func (c *client) offer(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub tracks connected clients by room. Delivery is best effort: a client
// whose buffer is full is disconnected and expected to re-fetch on reconnect.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*client]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*client]struct{}),
		logger: logger,
	}
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range c.rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[*client]struct{})
			h.rooms[room] = members
		}
		members[c] = struct{}{}
	}
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	for _, room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()
	c.close()
}

// Clients counts connections currently in room.
func (h *Hub) Clients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit sends one frame to every client in room.
func (h *Hub) Emit(room, event string, data interface{}) {
	msg, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		h.logger.Error("failed to encode realtime frame", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, msg, event)
}

// Broadcast sends one frame to every connected client once.
func (h *Hub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		h.logger.Error("failed to encode realtime frame", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	seen := make(map[*client]struct{})
	targets := make([]*client, 0)
	for _, members := range h.rooms {
		for c := range members {
			if _, dup := seen[c]; !dup {
				seen[c] = struct{}{}
				targets = append(targets, c)
			}
		}
	}
	h.mu.RUnlock()

	h.deliver(targets, msg, event)
}

func (h *Hub) deliver(targets []*client, msg []byte, event string) {
	for _, c := range targets {
		if !c.offer(msg) {
			h.logger.Warn("dropping slow realtime client", "event", event)
			h.leave(c)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.leave(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.leave(c)
				return
			}
		}
	}
}

// readPump discards client messages; it exists to notice disconnects and pongs.
func (h *Hub) readPump(c *client) {
	defer h.leave(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
