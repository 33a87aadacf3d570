package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository"
	"robot_dashboard/internal/robotcmd"

	"github.com/google/uuid"
)

// RobotNumberHint is shown when a submitted robot number is rejected.
const RobotNumberHint = "Please enter a number between 1 and 99"

const (
	defaultPairingTimeout = 2 * time.Minute
	cleanupTimeout        = 10 * time.Second
)

var (
	ErrInvalidTransition = errors.New("invalid pairing wizard transition")
	ErrPairingInProgress = errors.New("a pairing attempt is already in progress")
)

// ParseRobotNumber accepts a decimal integer in [1, 99].
func ParseRobotNumber(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !validRobotNumber(n) {
		return 0, ErrInvalidRobotNumber
	}
	return n, nil
}

// PairingService is the Introduction -> Pairing -> Result wizard. It owns the
// pair/bringup/bridge sequence and holds the robot store while it runs.
type PairingService struct {
	store   *RobotStore
	runner  CommandRunner
	catalog robotcmd.Catalog
	allow   robotcmd.AllowList
	events  repository.EventRepo
	opts    PairingOptions
	log     *logger.Logger

	mu     sync.Mutex
	status models.PairingStatus
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPairingService(
	store *RobotStore,
	runner CommandRunner,
	catalog robotcmd.Catalog,
	allow robotcmd.AllowList,
	events repository.EventRepo,
	opts PairingOptions,
	log *logger.Logger,
) *PairingService {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultPairingTimeout
	}
	p := &PairingService{
		store:   store,
		runner:  runner,
		catalog: catalog,
		allow:   allow,
		events:  events,
		opts:    opts,
		log:     logger.OrNop(log),
	}
	if store.State().RobotPaired {
		p.status.Step = models.StepResult
		p.status.Stage = models.StageDone
	}
	return p
}

func (p *PairingService) PairingStatus() models.PairingStatus {
	p.mu.Lock()
	st := p.snapshotLocked()
	p.mu.Unlock()
	return p.withRobot(st)
}

func (p *PairingService) snapshotLocked() models.PairingStatus {
	st := p.status
	st.Log = append([]string(nil), p.status.Log...)
	st.StepName = st.Step.String()
	return st
}

func (p *PairingService) withRobot(st models.PairingStatus) models.PairingStatus {
	robot := p.store.State()
	st.RobotNumber = robot.RobotNumber
	st.RobotPaired = robot.RobotPaired
	return st
}

// Begin moves Introduction -> Pairing.
func (p *PairingService) Begin() (models.PairingStatus, error) {
	p.mu.Lock()
	if p.status.Step != models.StepIntroduction {
		st := p.snapshotLocked()
		p.mu.Unlock()
		return p.withRobot(st), ErrInvalidTransition
	}
	p.status.Step = models.StepPairing
	p.status.Error = ""
	st := p.snapshotLocked()
	p.mu.Unlock()
	return p.withRobot(st), nil
}

// Submit validates raw and starts a pairing attempt in the background. The
// attempt outlives ctx; it ends on success, failure, timeout or Close.
func (p *PairingService) Submit(ctx context.Context, raw string) (models.PairingStatus, error) {
	p.mu.Lock()
	if err := p.canStartLocked(); err != nil {
		st := p.snapshotLocked()
		p.mu.Unlock()
		return p.withRobot(st), err
	}
	n, err := ParseRobotNumber(raw)
	if err != nil {
		p.status.Error = RobotNumberHint
		st := p.snapshotLocked()
		p.mu.Unlock()
		return p.withRobot(st), err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	attempt := p.startLocked(n, cancel)
	st := p.snapshotLocked()
	p.mu.Unlock()

	go func() {
		defer close(attempt.done)
		defer cancel()
		_ = p.run(runCtx, attempt.id, n)
	}()
	return p.withRobot(st), nil
}

// Pair runs the whole sequence for robot n and returns when it ends.
func (p *PairingService) Pair(ctx context.Context, n int) error {
	if !validRobotNumber(n) {
		return ErrInvalidRobotNumber
	}
	p.mu.Lock()
	if p.status.IsLoading {
		p.mu.Unlock()
		return ErrPairingInProgress
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	attempt := p.startLocked(n, cancel)
	p.mu.Unlock()

	defer close(attempt.done)
	return p.run(runCtx, attempt.id, n)
}

type pairingAttempt struct {
	id   string
	done chan struct{}
}

func (p *PairingService) canStartLocked() error {
	if p.status.IsLoading {
		return ErrPairingInProgress
	}
	if p.status.Step != models.StepPairing {
		return ErrInvalidTransition
	}
	return nil
}

func (p *PairingService) startLocked(n int, cancel context.CancelFunc) pairingAttempt {
	a := pairingAttempt{id: uuid.NewString(), done: make(chan struct{})}
	p.status = models.PairingStatus{
		AttemptID:   a.id,
		Step:        models.StepPairing,
		Stage:       models.StageIdle,
		IsLoading:   true,
		RobotNumber: n,
	}
	p.cancel = cancel
	p.done = a.done
	return a
}

func (p *PairingService) run(ctx context.Context, attemptID string, n int) error {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	log := p.log.With("attempt_id", attemptID, "robot_number", n)
	log.Infow("pairing started")

	if _, err := p.store.Dispatch(ctx, Action{Kind: ActSelectRobot, Source: SourcePairing, RobotNumber: n}); err != nil {
		return p.fail(ctx, log, n, models.StageIdle, err)
	}
	_, _ = p.store.Dispatch(ctx, Action{Kind: ActHold, Source: SourcePairing})
	defer func() { _, _ = p.store.Dispatch(ctx, Action{Kind: ActRelease, Source: SourcePairing}) }()

	recordEvent(ctx, p.events, log, models.EventPairing, fmt.Sprintf("Pairing with robot %d started", n),
		map[string]any{"attempt_id": attemptID, "robot_number": n})

	steps := []struct {
		stage models.PairingStage
		cmd   robotcmd.Command
	}{
		{models.StagePair, p.catalog.Pair(n)},
		{models.StageBringup, p.catalog.Bringup(n)},
		{models.StageBridge, p.catalog.Bridge(n)},
	}
	for i, s := range steps {
		if i > 0 {
			if err := sleepCtx(ctx, p.opts.StepDelay); err != nil {
				return p.fail(ctx, log, n, s.stage, err)
			}
		}
		p.update(func(st *models.PairingStatus) {
			st.Stage = s.stage
			st.Log = append(st.Log, fmt.Sprintf("Running %s for robot %d...", s.stage, n))
		})
		if err := s.cmd.Validate(p.allow); err != nil {
			return p.fail(ctx, log, n, s.stage, err)
		}
		res, err := p.runner.Execute(ctx, s.cmd.String())
		if err != nil {
			return p.fail(ctx, log, n, s.stage, err)
		}
		log.Infow("pairing step done", "stage", s.stage.String())
		p.update(func(st *models.PairingStatus) {
			if out := strings.TrimSpace(res.Output); out != "" {
				st.Log = append(st.Log, out)
			}
			st.Log = append(st.Log, fmt.Sprintf("%s complete", s.stage))
		})
	}

	if _, err := p.store.Dispatch(ctx, Action{Kind: ActSetPaired, Source: SourcePairing, Paired: true}); err != nil {
		return p.fail(ctx, log, n, models.StageBridge, err)
	}
	p.readBattery(ctx, log)

	p.update(func(st *models.PairingStatus) {
		st.Stage = models.StageDone
		st.Step = models.StepResult
		st.IsLoading = false
		st.Log = append(st.Log, fmt.Sprintf("Robot %d paired", n))
	})
	recordEvent(ctx, p.events, log, models.EventPairing, fmt.Sprintf("Robot %d paired", n),
		map[string]any{"attempt_id": attemptID, "robot_number": n})
	log.Infow("pairing succeeded")
	return nil
}

// fail cleans up after a failed attempt. A timeout or cancellation returns the
// wizard to Pairing; a failed step ends on the Result screen.
func (p *PairingService) fail(ctx context.Context, log *logger.Logger, n int, stage models.PairingStage, cause error) error {
	step := models.StepResult
	var msg string
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		step = models.StepPairing
		msg = fmt.Sprintf("Pairing timed out after %s", p.opts.Timeout)
	case errors.Is(ctx.Err(), context.Canceled):
		step = models.StepPairing
		msg = "Pairing cancelled"
	default:
		msg = fmt.Sprintf("%s failed: %v", stage, cause)
	}
	log.Errorw("pairing failed", "stage", stage.String(), "err", cause)

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	p.cleanup(cctx, log, n)
	if _, err := p.store.Dispatch(cctx, Action{Kind: ActSetPaired, Source: SourcePairing, Paired: false}); err != nil {
		log.Warnw("clear paired flag", "err", err)
	}

	p.update(func(st *models.PairingStatus) {
		st.Step = step
		st.IsLoading = false
		st.Error = msg
		st.Log = append(st.Log, "Error: "+msg)
	})
	recordEvent(cctx, p.events, log, models.EventError, msg, map[string]any{
		"robot_number": n,
		"stage":        stage.String(),
	})
	return fmt.Errorf("%s: %w", msg, cause)
}

// cleanup kills whatever the sequence may have left running. Failures are
// expected when nothing was started, so results are ignored.
func (p *PairingService) cleanup(ctx context.Context, log *logger.Logger, n int) {
	for _, c := range p.catalog.Cleanup(n) {
		if err := c.Validate(p.allow); err != nil {
			log.Errorw("cleanup command rejected", "err", err)
			continue
		}
		res := p.runner.ExecuteSilent(ctx, c.String())
		log.Debugw("cleanup", "command", c.String(), "failed", res.Failed)
	}
}

func (p *PairingService) readBattery(ctx context.Context, log *logger.Logger) {
	cmd := p.catalog.Battery()
	if cmd.Validate(p.allow) != nil {
		return
	}
	res := p.runner.ExecuteSilent(ctx, cmd.String())
	if res.Failed {
		return
	}
	pct, err := ParseBatteryPercentage(res.Output)
	if err != nil {
		log.Debugw("battery output not understood", "err", err)
		return
	}
	_, _ = p.store.Dispatch(ctx, Action{Kind: ActSetBattery, Source: SourcePairing, Battery: pct})
}

func (p *PairingService) update(fn func(st *models.PairingStatus)) {
	p.mu.Lock()
	fn(&p.status)
	p.mu.Unlock()
}

// Reset returns the wizard to Introduction and clears the robot state.
func (p *PairingService) Reset(ctx context.Context) (models.PairingStatus, error) {
	if err := p.idle(); err != nil {
		return p.PairingStatus(), err
	}
	if _, err := p.store.Dispatch(ctx, Action{Kind: ActReset, Source: SourceOperator}); err != nil {
		return p.PairingStatus(), err
	}
	p.update(func(st *models.PairingStatus) { *st = models.PairingStatus{} })
	return p.PairingStatus(), nil
}

// Disconnect kills the robot's bridge and bringup processes, then resets.
func (p *PairingService) Disconnect(ctx context.Context) (models.PairingStatus, error) {
	if err := p.idle(); err != nil {
		return p.PairingStatus(), err
	}
	state := p.store.State()
	if state.HasRobot() {
		p.cleanup(ctx, p.log.With("robot_number", state.RobotNumber), state.RobotNumber)
		recordEvent(ctx, p.events, p.log, models.EventPairing,
			fmt.Sprintf("Disconnected from robot %d", state.RobotNumber),
			map[string]any{"robot_number": state.RobotNumber})
	}
	return p.Reset(ctx)
}

func (p *PairingService) idle() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.IsLoading {
		return ErrPairingInProgress
	}
	return nil
}

// Close cancels an in-flight attempt and waits for its cleanup to finish.
func (p *PairingService) Close() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
