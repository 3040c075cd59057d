package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"mindnest-server/middleware"
	"mindnest-server/models"
	"mindnest-server/store"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// checkOrigin admits the configured client origin. With CLIENT_URL unset
// all origins are allowed, matching local development.
func checkOrigin(r *http.Request) bool {
	allowed := os.Getenv("CLIENT_URL")
	if allowed == "" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || strings.TrimSuffix(origin, "/") == strings.TrimSuffix(allowed, "/")
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

// Client is one live realtime session, bound to a single authenticated
// user for its lifetime.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Hub tracks connected clients and fans out domain events. Every client
// implicitly belongs to the global audience plus its own user audience.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	store      *store.Store
	mu         sync.RWMutex
}

func NewHub(s *store.Store) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		store:      s,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS HUB] Client registered: %s (total clients: %d)", client.userID, count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS HUB] Client unregistered: %s (total clients: %d)", client.userID, count)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish resolves the event's audience and delivers it to every matching
// connection. Delivery is fire-and-forget: clients with a full send buffer
// are evicted, and events for users with no live session are dropped.
func (h *Hub) Publish(evt models.Event) {
	data, err := json.Marshal(models.WSMessage{Type: evt.Type, Payload: evt.Payload})
	if err != nil {
		log.Printf("[WS HUB] Marshal error for event '%s': %v", evt.Type, err)
		return
	}

	var stale []*Client
	sent := 0
	h.mu.RLock()
	for client := range h.clients {
		if !evt.Audience.IsGlobal() && client.userID != evt.Audience.UserID() {
			continue
		}
		select {
		case client.send <- data:
			sent++
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	if len(stale) > 0 {
		h.mu.Lock()
		for _, client := range stale {
			if _, ok := h.clients[client]; ok {
				close(client.send)
				delete(h.clients, client)
				log.Printf("[WS HUB] Removed stale client: %s", client.userID)
			}
		}
		h.mu.Unlock()
	}

	log.Printf("[WS HUB] Event '%s' delivered to %d clients", evt.Type, sent)
}

// HandleWebSocket authenticates the connection with the token query
// parameter before upgrading. Failure rejects the connection outright;
// there are no anonymous realtime sessions.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	claims, err := middleware.ValidateToken(token)
	if err != nil {
		log.Printf("[WS] Connection rejected - invalid token from %s: %v", r.RemoteAddr, err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	user, err := h.store.GetUserByID(claims.UserID)
	if err != nil {
		log.Printf("[WS] Connection rejected - unknown user %s", claims.UserID)
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error for user %s: %v", user.ID, err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: user.ID,
	}

	go client.writePump()
	go client.readPump()

	h.register <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The client never drives state over the socket; the HTTP API is the
	// source of truth. Incoming frames only keep the connection alive.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for client %s: %v", c.userID, err)
			}
			break
		}
	}
}

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
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.userID, err)
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
