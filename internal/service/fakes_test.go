package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/robotcmd"
)

type runnerCall struct {
	cmd    string
	silent bool
}

// fakeRunner records every command and answers through fn.
type fakeRunner struct {
	mu    sync.Mutex
	calls []runnerCall
	fn    func(ctx context.Context, cmd string) (models.CommandResult, error)
}

func (f *fakeRunner) answer(ctx context.Context, cmd string, silent bool) (models.CommandResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runnerCall{cmd: cmd, silent: silent})
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return models.CommandResult{}, nil
	}
	return fn(ctx, cmd)
}

func (f *fakeRunner) Execute(ctx context.Context, cmd string) (models.CommandResult, error) {
	return f.answer(ctx, cmd, false)
}

func (f *fakeRunner) ExecuteSilent(ctx context.Context, cmd string) models.CommandResult {
	res, err := f.answer(ctx, cmd, true)
	if err != nil {
		return models.CommandResult{Failed: true, Output: err.Error(), ExitCode: 1}
	}
	return res
}

func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.cmd)
	}
	return out
}

// matching returns the recorded commands containing substr.
func (f *fakeRunner) matching(substr string) []string {
	var out []string
	for _, c := range f.commands() {
		if strings.Contains(c, substr) {
			out = append(out, c)
		}
	}
	return out
}

type fakeStateRepo struct {
	mu      sync.Mutex
	state   models.RobotState
	saves   int
	saveErr error
	loadErr error
}

func (f *fakeStateRepo) Save(_ context.Context, s models.RobotState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.state = s
	return nil
}

func (f *fakeStateRepo) Load(context.Context) (models.RobotState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.loadErr
}

// fakeHistoryRepo keeps entries newest first and trims to limit.
type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []models.CommandHistoryEntry
}

func (f *fakeHistoryRepo) Add(_ context.Context, e models.CommandHistoryEntry, limit int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append([]models.CommandHistoryEntry{e}, f.entries...)
	if len(f.entries) > limit {
		f.entries = f.entries[:limit]
	}
	return nil
}

func (f *fakeHistoryRepo) List(_ context.Context, limit int) ([]models.CommandHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.entries)
	if n > limit {
		n = limit
	}
	return append([]models.CommandHistoryEntry(nil), f.entries[:n]...), nil
}

func (f *fakeHistoryRepo) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = nil
	return nil
}

func testCatalog() robotcmd.Catalog {
	return robotcmd.NewCatalog("waffle", "", "", "")
}

// newTestStore returns a hydrated store over an in-memory repo seeded with st.
func newTestStore(t *testing.T, st models.RobotState) (*RobotStore, *fakeStateRepo) {
	t.Helper()
	repo := &fakeStateRepo{state: st}
	s := NewRobotStore(repo, nil)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return s, repo
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
