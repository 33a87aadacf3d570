package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"robot_dashboard/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait     = 10 * time.Second
	wsPongWait      = 60 * time.Second
	wsPingPeriod    = wsPongWait * 9 / 10
	wsMaxMessage    = 4 << 10
	wsDefaultPeriod = time.Second
	wsMaxPeriod     = 10 * time.Second

	// server -> client
	wsTypeState = "state"
	// client -> server: ask for a snapshot now
	wsTypeRefresh = "refresh"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// streamPeriod reads ?interval=2s or ?interval_ms=2000. Values outside
// (0, 10s] fall back to one second.
func streamPeriod(c *gin.Context) time.Duration {
	if d, err := time.ParseDuration(c.Query("interval")); err == nil && d > 0 && d <= wsMaxPeriod {
		return d
	}
	if ms, err := strconv.Atoi(c.Query("interval_ms")); err == nil {
		if d := time.Duration(ms) * time.Millisecond; d > 0 && d <= wsMaxPeriod {
			return d
		}
	}
	return wsDefaultPeriod
}

// originAllowed accepts requests without an Origin header and, when no CORS
// origins are configured, every origin.
func (h *Handler) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowOrigins) == 0 {
		return true
	}
	for _, o := range h.allowOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// dashboardStream owns one socket. Only run writes to conn; the read loop
// hands refresh requests over a channel.
type dashboardStream struct {
	h       *Handler
	conn    *websocket.Conn
	refresh chan struct{}
	closed  chan struct{}
}

// @Summary      Dashboard stream
// @Description  WebSocket. Pushes {"type":"state","data":DashboardSnapshot} on every robot state change and every interval (?interval=2s or ?interval_ms=2000, max 10s). Send {"type":"refresh"} for an immediate snapshot.
// @Tags         system
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	period := streamPeriod(c)
	upgrader := websocket.Upgrader{CheckOrigin: h.originAllowed}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	s := &dashboardStream{h: h, conn: conn, refresh: make(chan struct{}, 1), closed: make(chan struct{})}
	go s.readLoop()

	var changes <-chan models.RobotState
	if h.services.Robot != nil {
		ch, unsubscribe := h.services.Robot.Subscribe()
		defer unsubscribe()
		changes = ch
	}
	if err := s.run(c.Request.Context().Done(), changes, period); err != nil && h.log != nil {
		h.log.Infow("ws_closed", "err", err)
	}
}

func (s *dashboardStream) run(done <-chan struct{}, changes <-chan models.RobotState, period time.Duration) error {
	tick := time.NewTicker(period)
	defer tick.Stop()
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	if err := s.sendSnapshot(); err != nil {
		return err
	}
	for {
		var err error
		select {
		case <-done:
			return nil
		case <-s.closed:
			return nil
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err = s.conn.WriteMessage(websocket.PingMessage, nil)
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			err = s.sendSnapshot()
		case <-s.refresh:
			err = s.sendSnapshot()
		case <-tick.C:
			err = s.sendSnapshot()
		}
		if err != nil {
			return err
		}
	}
}

// readLoop keeps the read deadline alive through pongs and turns refresh
// messages into signals for run.
func (s *dashboardStream) readLoop() {
	defer close(s.closed)
	s.conn.SetReadLimit(wsMaxMessage)
	_ = s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsEnvelope
		if json.Unmarshal(data, &msg) != nil || msg.Type != wsTypeRefresh {
			continue
		}
		select {
		case s.refresh <- struct{}{}:
		default:
		}
	}
}

func (s *dashboardStream) sendSnapshot() error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteJSON(wsEnvelope{Type: wsTypeState, Data: s.h.snapshot()})
}
