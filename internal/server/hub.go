package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/lifeshock/internal/sim"
)

// Message is the JSON envelope for every socket frame.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	Sender  string `json:"sender"`
}

// Command is an inbound socket frame. Type is one of start, select,
// confirm, finish, reset or snapshot.
type Command struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Option   string `json:"option,omitempty"`
}

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// client is one socket attached to a session.
type client struct {
	hub     *Hub
	session string
	conn    *websocket.Conn
	send    chan []byte
}

// Hub tracks socket clients per session and fans messages out to them.
type Hub struct {
	log logrus.FieldLogger

	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

// NewHub returns an empty hub.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[string]map[*client]struct{}),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Count returns the number of connected sockets.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Send delivers m to every socket of a session. It never blocks: a client
// whose buffer is full is dropped.
func (h *Hub) Send(session string, m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[session] {
		select {
		case c.send <- data:
		default:
			h.dropLocked(c)
		}
	}
}

// CloseSession disconnects every socket of a session.
func (h *Hub) CloseSession(session string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[session] {
		h.dropLocked(c)
	}
	delete(h.clients, session)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.session]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.session] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	set := h.clients[c.session]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.session)
	}
}

// Serve upgrades the request and attaches the socket to session. Inbound
// commands go through apply; the reply goes back to this socket only.
// done is closed when the session ends; a socket that registers after that
// is closed straight away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, session string, done <-chan struct{},
	apply func(Command) (sim.Snapshot, error), current func() sim.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{hub: h, session: session, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	// Sessions close done before dropping their sockets, so a register that
	// missed CloseSession sees done closed here.
	select {
	case <-done:
		h.unregister(c)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	default:
	}
	c.reply(Message{Type: "snapshot", Payload: current(), Sender: "server"})

	go c.writePump()
	go c.readPump(apply)
}

// reply queues m for this client without blocking.
func (c *client) reply(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if _, ok := c.hub.clients[c.session][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *client) readPump(apply func(Command) (sim.Snapshot, error)) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Debug("websocket read")
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.reply(Message{Type: "error", Payload: map[string]string{"error": "invalid command"}, Sender: "server"})
			continue
		}
		snap, err := apply(cmd)
		if err != nil {
			c.reply(Message{
				Type:    "error",
				Payload: errorBody{Error: err.Error(), Snapshot: &snap},
				Sender:  "server",
			})
		}
	}
}

func (c *client) writePump() {
	defer func() { _ = c.conn.Close() }()

	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
