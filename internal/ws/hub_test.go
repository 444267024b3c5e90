package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/middleware"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *game.SessionManager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{TickRateHz: 100, MaxSessions: 5, SessionIdleSeconds: 60, SnapshotTTLMinutes: 1}
	gm := game.NewSessionManager(ctx, nil, nil, cfg)
	h := NewHub(gm, 1)
	gm.SetHooks(h.OnFrame, h.OnRoundOver)
	go h.Run(ctx)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sessions/:id/ws", HandleSessionWebSocket(h, testSecret))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, gm
}

func wsURL(srv *httptest.Server, sessionID, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + sessionID + "/ws?token=" + token
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(OutMessage) bool) OutMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg OutMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestWebSocketSessionFlow(t *testing.T) {
	srv, gm := newTestServer(t)
	s, err := gm.Create("")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	token, _, _ := middleware.IssuePlayerToken(testSecret, s.ID, time.Minute)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, s.ID, token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readUntil(t, conn, func(m OutMessage) bool { return m.Type == MsgState })
	if first.Snapshot == nil || first.Snapshot.Latch != game.LatchIdle {
		t.Fatalf("initial state = %+v", first.Snapshot)
	}

	drag := `{"type":"drag","data":{"buttons":2,"dx":40,"dy":0}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(drag)); err != nil {
		t.Fatalf("write drag: %v", err)
	}
	if err := conn.WriteJSON(WSMessage{Type: MsgShoot}); err != nil {
		t.Fatalf("write shoot: %v", err)
	}
	readUntil(t, conn, func(m OutMessage) bool {
		return m.Type == MsgFrame && m.Snapshot != nil && m.Snapshot.Latch == game.LatchFired
	})

	if err := conn.WriteJSON(WSMessage{Type: MsgGetState}); err != nil {
		t.Fatalf("write get_state: %v", err)
	}
	state := readUntil(t, conn, func(m OutMessage) bool { return m.Type == MsgState })
	if state.Snapshot.Shots != 1 {
		t.Errorf("shots = %d, want 1", state.Snapshot.Shots)
	}

	if err := conn.WriteJSON(WSMessage{Type: "spin"}); err != nil {
		t.Fatalf("write spin: %v", err)
	}
	errMsg := readUntil(t, conn, func(m OutMessage) bool { return m.Type == MsgError })
	if errMsg.Message != "Unknown message type" {
		t.Errorf("error = %q", errMsg.Message)
	}
}

func TestWebSocketRejectsBadTokens(t *testing.T) {
	srv, gm := newTestServer(t)
	s, _ := gm.Create("")
	other, _, _ := middleware.IssuePlayerToken(testSecret, "someone-else", time.Minute)
	missing, _, _ := middleware.IssuePlayerToken(testSecret, "missing", time.Minute)

	cases := []struct {
		name string
		url  string
		want int
	}{
		{"no token", wsURL(srv, s.ID, ""), http.StatusBadRequest},
		{"garbage", wsURL(srv, s.ID, "garbage"), http.StatusUnauthorized},
		{"other session", wsURL(srv, s.ID, other), http.StatusForbidden},
		{"unknown session", wsURL(srv, "missing", missing), http.StatusNotFound},
	}
	for _, tc := range cases {
		conn, resp, err := websocket.DefaultDialer.Dial(tc.url, nil)
		if err == nil {
			conn.Close()
			t.Errorf("%s: dial succeeded", tc.name)
			continue
		}
		if resp == nil || resp.StatusCode != tc.want {
			t.Errorf("%s: resp = %v, want status %d", tc.name, resp, tc.want)
		}
	}
}

func attachFakeClient(h *Hub, clientID, sessionID string) *Client {
	c := &Client{id: clientID, sessionID: sessionID, hub: h, send: make(chan []byte, 4)}
	h.clients[clientID] = c
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[string]*Client)
	}
	h.rooms[sessionID][clientID] = c
	return c
}

func TestHandleRoundEventBroadcastsToRoom(t *testing.T) {
	h := NewHub(nil, 1)
	c := attachFakeClient(h, "c1", "s1")
	outsider := attachFakeClient(h, "c2", "s2")

	payload, _ := json.Marshal(game.RoundEvent{
		Type:      "round_over",
		SessionID: "s1",
		Result:    game.RoundResult{Round: 3, Outcome: game.PhaseWon, PotCount: 4},
	})
	handleRoundEvent(h, string(payload))
	handleRoundEvent(h, "not json")

	select {
	case data := <-c.send:
		var msg OutMessage
		json.Unmarshal(data, &msg)
		if msg.Type != MsgRoundOver || msg.Result == nil || msg.Result.Round != 3 || msg.Result.Outcome != game.PhaseWon {
			t.Errorf("message = %s", data)
		}
	default:
		t.Fatal("no round_over delivered")
	}
	if len(outsider.send) != 0 {
		t.Error("round_over leaked to another session")
	}
}

func TestOnFrameThrottles(t *testing.T) {
	h := NewHub(nil, 3)
	c := attachFakeClient(h, "c1", "s1")
	s := game.NewSession("s1", "tok", time.Second)

	h.OnFrame(s, game.Snapshot{Frames: 1})
	h.OnFrame(s, game.Snapshot{Frames: 2, Events: []game.CollisionEvent{{Type: "wall"}}})
	h.OnFrame(s, game.Snapshot{Frames: 3})
	h.OnFrame(s, game.Snapshot{Frames: 4})

	if got := len(c.send); got != 2 {
		t.Errorf("sent %d frames, want 2", got)
	}
}
