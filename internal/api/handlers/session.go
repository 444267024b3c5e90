package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/middleware"
)

type createSessionRequest struct {
	PIN string `json:"pin,omitempty"`
}

type joinSessionRequest struct {
	PIN string `json:"pin"`
}

func playerTokenTTL(cfg *config.Config) time.Duration {
	if cfg.PlayerTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(cfg.PlayerTokenTTLMinutes) * time.Minute
}

// sessionError maps session manager errors onto HTTP responses.
func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, game.ErrInvalidPIN):
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid PIN"})
	case errors.Is(err, game.ErrTooManySessions):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many active sessions"})
	default:
		log.Printf("[SESSION] request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// CreateSession racks a new table and returns its ID, token and a player
// JWT for the websocket
func CreateSession(gm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSessionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}
		if req.PIN != "" && (len(req.PIN) < 4 || len(req.PIN) > 12) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "PIN must be 4 to 12 characters"})
			return
		}

		s, err := gm.Create(req.PIN)
		if err != nil {
			sessionError(c, err)
			return
		}

		jwtToken, exp, err := middleware.IssuePlayerToken(cfg.JWTSecret, s.ID, playerTokenTTL(cfg))
		if err != nil {
			gm.End(s.ID, "token failure")
			sessionError(c, err)
			return
		}

		c.Header("X-Session-ID", s.ID)
		c.JSON(http.StatusCreated, gin.H{
			"id":               s.ID,
			"token":            s.Token,
			"private":          s.Private,
			"player_token":     jwtToken,
			"token_expires_at": exp.UTC().Format(time.RFC3339),
			"ws_url":           "/api/v1/sessions/" + s.ID + "/ws?token=" + jwtToken,
			"snapshot":         s.Snapshot(),
		})
	}
}

// JoinSession checks the PIN of a table and issues a player JWT
func JoinSession(gm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req joinSessionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}

		s, err := gm.Join(c.Param("id"), req.PIN)
		if err != nil {
			sessionError(c, err)
			return
		}

		jwtToken, exp, err := middleware.IssuePlayerToken(cfg.JWTSecret, s.ID, playerTokenTTL(cfg))
		if err != nil {
			sessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":               s.ID,
			"player_token":     jwtToken,
			"token_expires_at": exp.UTC().Format(time.RFC3339),
			"ws_url":           "/api/v1/sessions/" + s.ID + "/ws?token=" + jwtToken,
		})
	}
}

// ListSessions returns the public tables hosted by this instance
func ListSessions(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		public := []game.SessionInfo{}
		for _, info := range gm.List() {
			if !info.Private {
				public = append(public, info)
			}
		}
		c.JSON(http.StatusOK, gin.H{"sessions": public, "count": len(public)})
	}
}

// GetSession returns the latest snapshot of a table. Ended tables are
// served from the Redis copy while it lasts.
func GetSession(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		snap, err := gm.Snapshot(id)
		if err != nil {
			sessionError(c, err)
			return
		}

		status := game.SessionClosed
		if s, err := gm.Get(id); err == nil {
			status = s.Status()
		}
		c.JSON(http.StatusOK, gin.H{
			"id":       id,
			"status":   status,
			"snapshot": snap,
		})
	}
}

// EndSession stops a table. Requires a player token for the same table.
func EndSession(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gm.End(c.Param("id"), "ended by player"); err != nil {
			sessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ended"})
	}
}

// GetRounds returns the recorded rounds of a table
func GetRounds(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		rounds, err := gm.Rounds(c.Param("id"))
		if err != nil {
			log.Printf("[DB] Failed to load rounds for %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rounds"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rounds": rounds, "count": len(rounds)})
	}
}
