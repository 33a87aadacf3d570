package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"robot_dashboard/internal/client"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/robotcmd"
	"robot_dashboard/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidRobotNumber, http.StatusBadRequest},
		{fmt.Errorf("nudge: %w", service.ErrUnknownDirection), http.StatusBadRequest},
		{fmt.Errorf("%w: %q", robotcmd.ErrInvalidTopic, "bad topic"), http.StatusBadRequest},
		{robotcmd.ErrNotAllowed, http.StatusForbidden},
		{service.ErrPairingInProgress, http.StatusConflict},
		{service.ErrVideoBusy, http.StatusConflict},
		{service.ErrRobotNotPaired, http.StatusConflict},
		{service.ErrBatteryUnavailable, http.StatusServiceUnavailable},
		{&client.RequestError{StatusCode: http.StatusInternalServerError, Message: "exit status 1"}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestAPIRoutes_RequireAuth(t *testing.T) {
	r := newTestRouter(authedService())
	for _, path := range []string{"/api/v1/robot/state", "/api/v1/pairing", "/api/v1/teleop", "/api/v1/history"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status=%d", path, w.Code)
		}
	}
}

func TestRobotState_Snapshot(t *testing.T) {
	s := authedService()
	s.Robot = newMockRobot(models.RobotState{RobotNumber: 7, RobotPaired: true, BatteryLevel: 55})
	s.Pairing = &mockPairing{status: models.PairingStatus{Step: models.StepResult, RobotNumber: 7, RobotPaired: true}}
	s.Monitor = &mockMonitor{status: models.MonitorStatus{Connected: true}}
	r := newTestRouter(s)

	w := doJSON(r, http.MethodGet, "/api/v1/robot/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	m := decodeBody(t, w)
	robot := m["robot"].(map[string]any)
	if robot["robot_number"].(float64) != 7 || robot["battery_level"].(float64) != 55 {
		t.Fatalf("unexpected robot: %v", robot)
	}
	if m["monitor"].(map[string]any)["connected"] != true {
		t.Fatalf("unexpected monitor: %v", m["monitor"])
	}
}

func TestCheckConnection(t *testing.T) {
	s := authedService()
	mon := &mockMonitor{checked: true, status: models.MonitorStatus{Connected: false}}
	s.Robot = newMockRobot(models.RobotState{RobotNumber: 3})
	s.Monitor = mon
	r := newTestRouter(s)

	w := doJSON(r, http.MethodPost, "/api/v1/robot/check", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if mon.checks != 1 {
		t.Fatalf("CheckNow calls = %d", mon.checks)
	}
	if decodeBody(t, w)["checked"] != true {
		t.Fatalf("expected checked=true: %s", w.Body.String())
	}
}

func TestRefreshBattery(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"ok", nil, http.StatusOK},
		{"not paired", service.ErrRobotNotPaired, http.StatusConflict},
		{"unreadable", service.ErrBatteryUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := authedService()
			s.Monitor = &mockMonitor{battery: models.RobotState{RobotNumber: 3, RobotPaired: true, BatteryLevel: 90}, batteryErr: tc.err}
			w := doJSON(newTestRouter(s), http.MethodPost, "/api/v1/robot/battery", "")
			if w.Code != tc.code {
				t.Fatalf("status=%d want %d body=%s", w.Code, tc.code, w.Body.String())
			}
		})
	}
}

func TestHealth(t *testing.T) {
	w := doJSON(newTestRouter(&service.Service{}), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || decodeBody(t, w)["status"] != "ok" {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
}
