package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/wordduel/game/service"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBufferSize     = 256
	deliveryBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Dispatcher receives decoded actions from connections
type Dispatcher interface {
	Dispatch(ctx context.Context, connID string, action service.Action)
}

// Message is the outbound frame format
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client represents a WebSocket client
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	id      string
	limiter *rate.Limiter
}

// ID returns the connection identifier handed to the dispatcher
func (c *Client) ID() string {
	return c.id
}

type delivery struct {
	recipients []string
	payload    []byte
}

// Hub maintains the set of active clients and routes outbound frames to them
type Hub struct {
	// Registered clients by connection id, owned by Run
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	deliveries chan delivery

	stopped chan struct{}
	count   atomic.Int64

	rateLimit rate.Limit
	rateBurst int
}

// Option configures a Hub
type Option func(*Hub)

// WithRateLimit caps inbound actions per connection. A non-positive
// perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(h *Hub) {
		if perSecond <= 0 {
			h.rateLimit = rate.Inf
			return
		}
		if burst < 1 {
			burst = 1
		}
		h.rateLimit = rate.Limit(perSecond)
		h.rateBurst = burst
	}
}

// NewHub creates a new WebSocket hub
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, deliveryBufferSize),
		stopped:    make(chan struct{}),
		rateLimit:  rate.Inf,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the hub's event loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for id, client := range h.clients {
			delete(h.clients, id)
			close(client.send)
		}
		h.count.Store(0)
		close(h.stopped)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client.id] = client
			h.count.Store(int64(len(h.clients)))
			log.Debug().Str("conn", client.id).Int("clients", len(h.clients)).Msg("client registered")

		case client := <-h.unregister:
			h.removeClient(client)

		case d := <-h.deliveries:
			for _, id := range d.recipients {
				client, ok := h.clients[id]
				if !ok {
					continue
				}
				select {
				case client.send <- d.payload:
				default:
					log.Warn().Str("conn", id).Msg("send buffer full, dropping client")
					h.removeClient(client)
				}
			}
		}
	}
}

// ServeWS upgrades the request and attaches the connection to the hub.
// Decoded actions are handed to d tagged with the connection id.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, d Dispatcher) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		id:      uuid.NewString(),
		limiter: rate.NewLimiter(h.rateLimit, h.rateBurst),
	}

	// The greeting is queued before registration so it is always the first frame.
	if greeting, err := encode(service.EventConnected, service.ConnectedPayload{ID: client.id}); err == nil {
		client.send <- greeting
	}

	select {
	case h.register <- client:
	case <-h.stopped:
		conn.Close()
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go client.writePump()
	go client.readPump(ctx, d)
}

// Send delivers one event to a single connection
func (h *Hub) Send(connID string, event string, data any) {
	h.Broadcast([]string{connID}, event, data)
}

// Broadcast delivers one event to every listed connection. Unknown
// connections are skipped.
func (h *Hub) Broadcast(connIDs []string, event string, data any) {
	if len(connIDs) == 0 {
		return
	}

	payload, err := encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal websocket message")
		return
	}

	select {
	case h.deliveries <- delivery{recipients: connIDs, payload: payload}:
	case <-h.stopped:
	}
}

// ClientCount returns the number of registered connections
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

func (h *Hub) removeClient(client *Client) {
	if current, ok := h.clients[client.id]; !ok || current != client {
		return
	}
	delete(h.clients, client.id)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
	log.Debug().Str("conn", client.id).Int("clients", len(h.clients)).Msg("client unregistered")
}

func encode(event string, data any) ([]byte, error) {
	return json.Marshal(Message{Event: event, Data: data})
}

// readPump decodes actions from the connection until it closes, then
// reports the disconnect exactly once
func (c *Client) readPump(ctx context.Context, d Dispatcher) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
		d.Dispatch(ctx, c.id, service.Action{Type: service.ActionDisconnect})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn", c.id).Msg("websocket read error")
			}
			return
		}

		if !c.limiter.Allow() {
			log.Debug().Str("conn", c.id).Msg("rate limited, dropping message")
			continue
		}

		var action service.Action
		if err := json.Unmarshal(raw, &action); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("malformed message")
			continue
		}
		// Disconnects come from the transport, never from the peer.
		if action.Type == service.ActionDisconnect || action.Type == "" {
			continue
		}

		d.Dispatch(ctx, c.id, action)
	}
}

// writePump pumps frames from the hub to the connection, one message per frame
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
