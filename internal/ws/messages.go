package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/playmatatu/billiards/internal/game"
)

// Message types
const (
	MsgDrag     = "drag"
	MsgShoot    = "shoot"
	MsgReset    = "reset"
	MsgGetState = "get_state"

	MsgFrame     = "frame"
	MsgRoundOver = "round_over"
	MsgState     = "state"
	MsgError     = "error"
)

// WSMessage is an incoming client message
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DragData carries a pointer drag. DX is the previous pointer x minus the
// current one, in pixels.
type DragData struct {
	Buttons uint8   `json:"buttons"`
	DX      float64 `json:"dx"`
	DY      float64 `json:"dy"`
}

// OutMessage is everything the server sends. Only the fields relevant to
// Type are set.
type OutMessage struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	Snapshot  *game.Snapshot    `json:"snapshot,omitempty"`
	Result    *game.RoundResult `json:"result,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// maxDragPixels bounds the pointer travel a single drag event may report.
const maxDragPixels = 2000.0

var errMissingDragData = errors.New("drag requires data")

func clampDrag(v float64) float64 {
	return math.Max(-maxDragPixels, math.Min(maxDragPixels, v))
}

// toCommand maps an input message onto a session command.
func toCommand(msg WSMessage) (game.Command, error) {
	switch msg.Type {
	case MsgDrag:
		if len(msg.Data) == 0 {
			return game.Command{}, errMissingDragData
		}
		var d DragData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return game.Command{}, fmt.Errorf("invalid drag data: %w", err)
		}
		cmd := game.Command{Type: game.CommandDrag, Buttons: game.ButtonMask(d.Buttons), DX: d.DX, DY: d.DY}
		if err := cmd.Validate(); err != nil {
			return game.Command{}, err
		}
		cmd.DX, cmd.DY = clampDrag(cmd.DX), clampDrag(cmd.DY)
		return cmd, nil
	case MsgShoot:
		return game.Command{Type: game.CommandShoot}, nil
	case MsgReset:
		return game.Command{Type: game.CommandReset}, nil
	}
	return game.Command{}, game.ErrUnknownCommand
}

func stateMessage(sessionID string, snap game.Snapshot) OutMessage {
	return OutMessage{Type: MsgState, SessionID: sessionID, Snapshot: &snap}
}

func frameMessage(sessionID string, snap game.Snapshot) OutMessage {
	return OutMessage{Type: MsgFrame, SessionID: sessionID, Snapshot: &snap}
}

func roundOverMessage(sessionID string, r game.RoundResult) OutMessage {
	return OutMessage{Type: MsgRoundOver, SessionID: sessionID, Result: &r}
}

func errorMessage(text string) OutMessage {
	return OutMessage{Type: MsgError, Message: text}
}
