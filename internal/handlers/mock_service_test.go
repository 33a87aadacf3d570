package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockBridge struct {
	resp    models.CommandResponse
	err     error
	lastCmd string
	calls   int
}

func (m *mockBridge) Execute(ctx context.Context, command string) (models.CommandResponse, error) {
	m.calls++
	m.lastCmd = command
	return m.resp, m.err
}

// mockRobot hands out one subscription channel that tests push into.
type mockRobot struct {
	mu    sync.Mutex
	state models.RobotState
	ch    chan models.RobotState
}

func newMockRobot(st models.RobotState) *mockRobot {
	return &mockRobot{state: st, ch: make(chan models.RobotState, 1)}
}

func (m *mockRobot) State() models.RobotState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
func (m *mockRobot) Subscribe() (<-chan models.RobotState, func()) {
	return m.ch, func() {}
}
func (m *mockRobot) set(st models.RobotState) {
	m.mu.Lock()
	m.state = st
	m.mu.Unlock()
	m.ch <- st
}

type mockMonitor struct {
	checked    bool
	status     models.MonitorStatus
	battery    models.RobotState
	batteryErr error
	checks     int
}

func (m *mockMonitor) Run(ctx context.Context, interval time.Duration) { <-ctx.Done() }
func (m *mockMonitor) CheckNow(ctx context.Context) bool {
	m.checks++
	return m.checked
}
func (m *mockMonitor) MonitorStatus() models.MonitorStatus { return m.status }
func (m *mockMonitor) RefreshBattery(ctx context.Context) (models.RobotState, error) {
	return m.battery, m.batteryErr
}

type mockPairing struct {
	status     models.PairingStatus
	beginErr   error
	submitErr  error
	resetErr   error
	discErr    error
	lastSubmit string
	resets     int
	disconnect int
}

func (m *mockPairing) PairingStatus() models.PairingStatus { return m.status }
func (m *mockPairing) Begin() (models.PairingStatus, error) {
	return m.status, m.beginErr
}
func (m *mockPairing) Submit(ctx context.Context, robotNumber string) (models.PairingStatus, error) {
	m.lastSubmit = robotNumber
	return m.status, m.submitErr
}
func (m *mockPairing) Pair(ctx context.Context, robotNumber int) error { return m.submitErr }
func (m *mockPairing) Reset(ctx context.Context) (models.PairingStatus, error) {
	m.resets++
	return m.status, m.resetErr
}
func (m *mockPairing) Disconnect(ctx context.Context) (models.PairingStatus, error) {
	m.disconnect++
	return m.status, m.discErr
}

type mockTeleop struct {
	status      models.TeleopStatus
	err         error
	lastDir     service.Direction
	lastKey     string
	lastLinear  *float64
	lastAngular *float64
	stops       int
}

func (m *mockTeleop) TeleopStatus() models.TeleopStatus { return m.status }
func (m *mockTeleop) Send(ctx context.Context, target models.Velocity) (models.TeleopStatus, error) {
	return m.status, m.err
}
func (m *mockTeleop) Nudge(ctx context.Context, dir service.Direction) (models.TeleopStatus, error) {
	m.lastDir = dir
	return m.status, m.err
}
func (m *mockTeleop) Set(ctx context.Context, linear, angular *float64) (models.TeleopStatus, error) {
	m.lastLinear, m.lastAngular = linear, angular
	return m.status, m.err
}
func (m *mockTeleop) Stop(ctx context.Context) (models.TeleopStatus, error) {
	m.stops++
	return m.status, m.err
}
func (m *mockTeleop) HandleKey(ctx context.Context, key string) (models.TeleopStatus, error) {
	m.lastKey = key
	return m.status, m.err
}

type mockHistory struct {
	entries  []models.CommandHistoryEntry
	err      error
	clearErr error
	cleared  int
}

func (m *mockHistory) Record(ctx context.Context, e models.CommandHistoryEntry) error {
	m.entries = append([]models.CommandHistoryEntry{e}, m.entries...)
	return m.err
}
func (m *mockHistory) Recent(ctx context.Context) ([]models.CommandHistoryEntry, error) {
	return m.entries, m.err
}
func (m *mockHistory) Clear(ctx context.Context) error {
	m.cleared++
	return m.clearErr
}

type mockTerminal struct {
	res     models.TerminalResult
	err     error
	lastCmd string
}

func (m *mockTerminal) RunCommand(ctx context.Context, command string) (models.TerminalResult, error) {
	m.lastCmd = command
	return m.res, m.err
}

type mockTopics struct {
	topics   []models.Topic
	output   string
	err      error
	lastArg  string
	lastCall string
}

func (m *mockTopics) ListTopics(ctx context.Context) ([]models.Topic, error) {
	m.lastCall = "list"
	return m.topics, m.err
}
func (m *mockTopics) TopicInfo(ctx context.Context, name string) (string, error) {
	m.lastCall, m.lastArg = "info", name
	return m.output, m.err
}
func (m *mockTopics) EchoTopic(ctx context.Context, name string) (string, error) {
	m.lastCall, m.lastArg = "echo", name
	return m.output, m.err
}
func (m *mockTopics) ShowInterface(ctx context.Context, typ string) (string, error) {
	m.lastCall, m.lastArg = "interface", typ
	return m.output, m.err
}

type mockVideo struct {
	status   models.VideoStatus
	startErr error
	stopErr  error
}

func (m *mockVideo) VideoStatus(ctx context.Context) models.VideoStatus { return m.status }
func (m *mockVideo) StartVideo(ctx context.Context) (models.VideoStatus, error) {
	return m.status, m.startErr
}
func (m *mockVideo) StopVideo(ctx context.Context) (models.VideoStatus, error) {
	return m.status, m.stopErr
}

type mockEventLog struct {
	resp []models.RobotEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.RobotEvent, error) {
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

const testToken = "tok"

// authedService returns a service whose auth accepts testToken.
func authedService() *service.Service {
	return &service.Service{Authorization: &mockAuth{parseID: 1}}
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// doJSON sends an authenticated request with an optional JSON body.
func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader(testToken) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return m
}
