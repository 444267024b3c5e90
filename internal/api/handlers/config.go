package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
)

// GetConfig returns the table constants and rates a client needs to draw
// and drive a session
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ball_radius":      game.BallRadius,
			"table_half_width": game.TableHalfWidth,
			"table_half_depth": game.TableHalfDepth,
			"time_scale":       game.TimeScale,
			"rest_epsilon":     game.RestEpsilon,
			"launch_scale":     game.LaunchScale,
			"drag_sensitivity": game.DragSensitivity,
			"num_targets":      game.NumTargets,
			"tick_rate_hz":     cfg.TickRateHz,
			"frame_every":      cfg.FrameBroadcastEvery,
			"idle_seconds":     cfg.SessionIdleSeconds,
			"layout":           game.StandardLayout(),
		})
	}
}
