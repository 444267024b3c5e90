package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/middleware"
)

// HandleSessionWebSocket upgrades GET /sessions/:id/ws?token=<jwt>. The token
// must have been issued for the same session.
func HandleSessionWebSocket(h *Hub, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		claims, err := middleware.ParsePlayerToken(jwtSecret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.SessionID != sessionID {
			c.JSON(http.StatusForbidden, gin.H{"error": "token not valid for this session"})
			return
		}
		if _, err := h.manager.Get(sessionID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			id:        uuid.NewString(),
			sessionID: sessionID,
			conn:      conn,
			hub:       h,
			send:      make(chan []byte, 256),
		}

		select {
		case h.register <- client:
		case <-h.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads client input until the connection drops.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes one input message.
func (c *Client) handleMessage(msg WSMessage) {
	if msg.Type == MsgGetState {
		snap, err := c.hub.manager.Snapshot(c.sessionID)
		if err != nil {
			c.sendError("Session not found")
			return
		}
		c.hub.SendToClient(c.id, stateMessage(c.sessionID, snap))
		return
	}

	cmd, err := toCommand(msg)
	if err != nil {
		if errors.Is(err, game.ErrUnknownCommand) {
			c.sendError("Unknown message type")
		} else {
			c.sendError(err.Error())
		}
		return
	}

	switch err := c.hub.manager.Submit(c.sessionID, cmd); {
	case err == nil:
	case errors.Is(err, game.ErrSessionNotFound), errors.Is(err, game.ErrSessionClosed):
		c.sendError("Session has ended")
	case errors.Is(err, game.ErrCommandQueueFull):
		c.sendError("Too many commands, slow down")
	default:
		log.Printf("[WS] Submit failed for client %s: %v", c.id, err)
		c.sendError("Command failed")
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.hub.SendToClient(c.id, errorMessage(message))
}
