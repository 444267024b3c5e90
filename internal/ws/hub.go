package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client represents a connected WebSocket client
type Client struct {
	id        string
	sessionID string
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
}

// Hub maintains the set of active clients, grouped by session
type Hub struct {
	clients    map[string]*Client            // client ID -> Client
	rooms      map[string]map[string]*Client // session ID -> client ID -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	manager    *game.SessionManager
	frameEvery int
	mu         sync.RWMutex
}

// NewHub creates a hub for the manager's sessions. Only every frameEvery-th
// frame is broadcast, plus any frame that carries collision events.
func NewHub(gm *game.SessionManager, frameEvery int) *Hub {
	if frameEvery < 1 {
		frameEvery = 1
	}
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		manager:    gm,
		frameEvery: frameEvery,
	}
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			if _, exists := h.rooms[client.sessionID]; !exists {
				h.rooms[client.sessionID] = make(map[string]*Client)
			}
			h.rooms[client.sessionID][client.id] = client
			size := len(h.rooms[client.sessionID])
			h.mu.Unlock()

			log.Printf("[WS] Client %s connected to session %s (room_size=%d)", client.id, client.sessionID, size)
			if snap, err := h.manager.Snapshot(client.sessionID); err == nil {
				h.SendToClient(client.id, stateMessage(client.sessionID, snap))
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				delete(h.clients, client.id)
				if room, exists := h.rooms[client.sessionID]; exists {
					delete(room, client.id)
					if len(room) == 0 {
						delete(h.rooms, client.sessionID)
					}
				}
				close(client.send)
				log.Printf("[WS] Client %s disconnected from session %s", client.id, client.sessionID)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
	h.rooms = make(map[string]map[string]*Client)
}

// BroadcastToSession sends a message to every client watching a session
func (h *Hub) BroadcastToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[sessionID] {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for client %s in session %s, dropping message", client.id, sessionID)
		}
	}
}

// SendToClient sends a message to one client
func (h *Hub) SendToClient(clientID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, exists := h.clients[clientID]
	if !exists {
		return
	}
	select {
	case client.send <- data:
	default:
		log.Printf("[WS] SendToClient dropped message for client %s (buffer full)", clientID)
	}
}

// RoomSize returns the number of clients watching a session.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// OnFrame is registered with the session manager and runs on the session
// goroutine.
func (h *Hub) OnFrame(s *game.Session, snap game.Snapshot) {
	if snap.Frames%h.frameEvery != 0 && len(snap.Events) == 0 {
		return
	}
	if h.RoomSize(s.ID) == 0 {
		return
	}
	h.BroadcastToSession(s.ID, frameMessage(s.ID, snap))
}

// OnRoundOver is registered with the session manager for deployments
// without Redis; with Redis the round_events subscriber calls
// BroadcastToSession instead.
func (h *Hub) OnRoundOver(s *game.Session, result game.RoundResult) {
	h.BroadcastToSession(s.ID, roundOverMessage(s.ID, result))
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}
