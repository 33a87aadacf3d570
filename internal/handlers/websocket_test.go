package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestStreamPeriod(t *testing.T) {
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
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := streamPeriod(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, s *service.Service, interval string) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	q := u.Query()
	q.Set("interval", interval)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) models.DashboardSnapshot {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != "state" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var snap models.DashboardSnapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	return snap
}

func TestWebSocket_StateStream_InitialAndPeriodic(t *testing.T) {
	robot := newMockRobot(models.RobotState{RobotNumber: 5, RobotPaired: true, BatteryLevel: 80})
	s := &service.Service{
		Robot:   robot,
		Pairing: &mockPairing{status: models.PairingStatus{Step: models.StepResult, StepName: "result", Stage: models.StageDone}},
		Monitor: &mockMonitor{status: models.MonitorStatus{Connected: true}},
	}
	conn := dialWS(t, s, "20ms")

	snap := readSnapshot(t, conn)
	if snap.Robot.RobotNumber != 5 || !snap.Robot.RobotPaired || snap.Robot.BatteryLevel != 80 {
		t.Fatalf("unexpected robot: %+v", snap.Robot)
	}
	if snap.Pairing.Step != models.StepResult || !snap.Monitor.Connected {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// A subsequent tick carries the same shape.
	snap = readSnapshot(t, conn)
	if snap.Robot.RobotNumber != 5 {
		t.Fatalf("unexpected tick: %+v", snap.Robot)
	}
}

func TestWebSocket_PushesOnStateChange(t *testing.T) {
	robot := newMockRobot(models.RobotState{RobotNumber: 5, RobotPaired: true})
	s := &service.Service{Robot: robot}
	// Ticks are slow so the second frame can only come from the change.
	conn := dialWS(t, s, "10s")

	if snap := readSnapshot(t, conn); !snap.Robot.RobotPaired {
		t.Fatalf("initial snapshot: %+v", snap.Robot)
	}

	robot.set(models.RobotState{RobotNumber: 5, RobotPaired: false})
	if snap := readSnapshot(t, conn); snap.Robot.RobotPaired {
		t.Fatalf("expected connection loss to be pushed, got %+v", snap.Robot)
	}
}

func TestWebSocket_NoServicesStillStreams(t *testing.T) {
	conn := dialWS(t, &service.Service{}, "20ms")
	snap := readSnapshot(t, conn)
	if snap.Robot.HasRobot() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestWebSocket_RefreshRequest(t *testing.T) {
	robot := newMockRobot(models.RobotState{RobotNumber: 3})
	conn := dialWS(t, &service.Service{Robot: robot}, "10s")
	readSnapshot(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(map[string]string{"type": "refresh"}); err != nil {
		t.Fatal(err)
	}
	if snap := readSnapshot(t, conn); snap.Robot.RobotNumber != 3 {
		t.Fatalf("refresh snapshot: %+v", snap.Robot)
	}
}

func TestOriginAllowed(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, WithAllowedOrigins([]string{"http://dash.local"}))
	cases := map[string]bool{"": true, "http://dash.local": true, "http://evil.local": false}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if got := h.originAllowed(req); got != want {
			t.Fatalf("originAllowed(%q) = %v, want %v", origin, got, want)
		}
	}
	if !NewHandler(&service.Service{}, nil).originAllowed(httptest.NewRequest(http.MethodGet, "/ws", nil)) {
		t.Fatal("no configured origins should allow all")
	}
}
