package handlers

import (
	"errors"
	"net/http"
	"testing"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/robotcmd"
	"robot_dashboard/internal/service"
)

func TestTerminalRoutes(t *testing.T) {
	term := &mockTerminal{res: models.TerminalResult{Command: "ros2 node list", Output: "/turtlebot3_node\n"}}
	hist := &mockHistory{entries: []models.CommandHistoryEntry{{ID: "1", Command: "ros2 node list"}}}
	s := authedService()
	s.Terminal = term
	s.History = hist
	r := newTestRouter(s)

	w := doJSON(r, http.MethodPost, "/api/v1/terminal", `{"command":"ros2 node list"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("run: %d %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["output"] != "/turtlebot3_node\n" || term.lastCmd != "ros2 node list" {
		t.Fatalf("unexpected run: %s", w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/v1/history", "")
	if w.Code != http.StatusOK || decodeBody(t, w)["count"].(float64) != 1 {
		t.Fatalf("history: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, "/api/v1/history", "")
	if w.Code != http.StatusOK || hist.cleared != 1 {
		t.Fatalf("clear: %d cleared=%d", w.Code, hist.cleared)
	}
}

func TestTerminalRoutes_Errors(t *testing.T) {
	s := authedService()
	s.Terminal = &mockTerminal{err: robotcmd.ErrEmptyCommand}
	s.History = &mockHistory{err: errors.New("db locked"), clearErr: errors.New("db locked")}
	r := newTestRouter(s)

	if w := doJSON(r, http.MethodPost, "/api/v1/terminal", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing command: %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/v1/terminal", `{"command":" "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("blank command: %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/api/v1/history", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("history error: %d", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, "/api/v1/history", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("clear error: %d", w.Code)
	}
}

func TestTerminalRoutes_TimeoutIsData(t *testing.T) {
	s := authedService()
	s.Terminal = &mockTerminal{res: models.TerminalResult{Command: "ros2 topic echo /scan", Error: service.TerminalTimeoutMessage, TimedOut: true}}
	w := doJSON(newTestRouter(s), http.MethodPost, "/api/v1/terminal", `{"command":"ros2 topic echo /scan"}`)
	if w.Code != http.StatusOK || decodeBody(t, w)["timed_out"] != true {
		t.Fatalf("timeout: %d %s", w.Code, w.Body.String())
	}
}
