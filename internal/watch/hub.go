package watch

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/wonny/stocklens/pkg/logger"
)

const clientSendBuffer = 8

// Hub fans analysis updates out to websocket subscribers. Clients are
// read-only consumers; a client that cannot keep up is dropped rather
// than allowed to block the broadcast loop.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	// done is closed when Run exits; every channel send selects on it
	// so no sender can block once the hub stops draining.
	done     chan struct{}
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a new broadcast hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
		clients:    map[*client]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same-origin enforcement is left to the reverse proxy
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Run owns the client set until the context is cancelled. All map
// mutation happens on this goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				close(c.send)
				c.conn.Close()
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.WithField("clients", len(h.clients)).Debug("Websocket client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.logger.WithField("clients", len(h.clients)).Debug("Websocket client disconnected")

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast queues a message for every connected client. After
// shutdown it is a no-op instead of blocking the caller.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ServeWS upgrades an HTTP request into a hub subscription.
// GET /ws/signals
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writeLoop(c)
	go h.readLoop(c)
}

// writeLoop drains the send channel onto the connection.
func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readLoop discards inbound frames and detects disconnects.
func (h *Hub) readLoop(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
