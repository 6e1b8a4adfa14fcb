package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"switchbot_panel/internal/models"
	"switchbot_panel/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.u, nil)
			if got := h.parseInterval(c); got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

type wsTestEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialPanel(t *testing.T, p *testPanel) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(p.services))
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = url.Values{"interval_ms": {"20"}}.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wsTestEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env wsTestEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_CountdownThenLogBacklog(t *testing.T) {
	p := newTestPanel()
	remaining := 90
	p.timer.state = models.CountdownState{Running: true, RemainingSeconds: &remaining}
	p.logs.entries = []models.LogEntry{
		{Seq: 1, Kind: models.LogInfo, Message: "device list fetched (3 devices)"},
		{Seq: 2, Kind: models.LogInfo, Message: "countdown started: 2 min, then shutdown"},
	}
	conn := dialPanel(t, p)

	env := readEnvelope(t, conn)
	if env.Type != wsTypeCountdown {
		t.Fatalf("first envelope = %+v", env)
	}
	var st models.CountdownState
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("unmarshal countdown: %v", err)
	}
	if !st.Running || st.RemainingSeconds == nil || *st.RemainingSeconds != 90 {
		t.Fatalf("countdown = %+v", st)
	}

	env = readEnvelope(t, conn)
	if env.Type != wsTypeLog {
		t.Fatalf("second envelope = %+v", env)
	}
	var entries []models.LogEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("unmarshal log: %v", err)
	}
	if len(entries) != 2 || entries[0].Seq != 1 || entries[1].Seq != 2 {
		t.Fatalf("entries = %+v", entries)
	}

	// Backlog already delivered: the next tick carries only the countdown.
	env = readEnvelope(t, conn)
	if env.Type != wsTypeCountdown {
		t.Fatalf("tick envelope = %+v", env)
	}
	env = readEnvelope(t, conn)
	if env.Type != wsTypeCountdown {
		t.Fatalf("expected no repeated log batch, got %+v", env)
	}
}

func TestWebSocket_IdleCountdownHasNoRemaining(t *testing.T) {
	conn := dialPanel(t, newTestPanel())

	env := readEnvelope(t, conn)
	if env.Type != wsTypeCountdown {
		t.Fatalf("envelope = %+v", env)
	}
	var raw map[string]any
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["running"] != false || raw["remaining_seconds"] != nil {
		t.Fatalf("idle countdown = %v", raw)
	}
}
