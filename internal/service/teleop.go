package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository"
	"robot_dashboard/internal/robotcmd"
)

// TurtleBot3 Waffle velocity limits and per-press increments.
const (
	MaxLinearVelocity  = 0.26 // m/s
	MaxAngularVelocity = 1.82 // rad/s
	LinearStep         = 0.02
	AngularStep        = 0.2
)

const (
	teleopStatusIdle    = "Idle"
	teleopStatusSent    = "Command sent"
	TeleopSendFailed    = "Failed to send command"
	teleopStatusStopped = "Stopped"
)

type Direction string

const (
	DirForward  Direction = "forward"
	DirBackward Direction = "backward"
	DirLeft     Direction = "left"
	DirRight    Direction = "right"
	DirStop     Direction = "stop"
)

var (
	ErrUnknownDirection = errors.New("unknown direction")
	ErrUnknownKey       = errors.New("key is not bound to a teleop action")
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirForward, DirBackward, DirLeft, DirRight, DirStop:
		return d, nil
	}
	return "", ErrUnknownDirection
}

// KeyDirection maps keyboard keys (browser KeyboardEvent.key or terminal key
// names) onto directions.
func KeyDirection(key string) (Direction, bool) {
	if key == " " {
		return DirStop, true
	}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "w", "up", "arrowup":
		return DirForward, true
	case "s", "down", "arrowdown":
		return DirBackward, true
	case "a", "left", "arrowleft":
		return DirLeft, true
	case "d", "right", "arrowright":
		return DirRight, true
	case "space", "spacebar":
		return DirStop, true
	}
	return "", false
}

// ClampVelocity bounds both components to the robot limits. NaN becomes zero.
func ClampVelocity(v models.Velocity) models.Velocity {
	return models.Velocity{
		Linear:  clampFloat(v.Linear, MaxLinearVelocity),
		Angular: clampFloat(v.Angular, MaxAngularVelocity),
	}
}

func clampFloat(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-limit, math.Min(limit, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TeleopService turns operator input into cmd_vel publishes.
type TeleopService struct {
	runner  CommandRunner
	history HistoryRecorder
	catalog robotcmd.Catalog
	allow   robotcmd.AllowList
	events  repository.EventRepo
	log     *logger.Logger

	sendMu sync.Mutex // one publish at a time

	mu     sync.Mutex
	status models.TeleopStatus
}

func NewTeleopService(
	runner CommandRunner,
	history HistoryRecorder,
	catalog robotcmd.Catalog,
	allow robotcmd.AllowList,
	events repository.EventRepo,
	log *logger.Logger,
) *TeleopService {
	return &TeleopService{
		runner:  runner,
		history: history,
		catalog: catalog,
		allow:   allow,
		events:  events,
		log:     logger.OrNop(log),
		status:  models.TeleopStatus{Status: teleopStatusIdle},
	}
}

func (t *TeleopService) TeleopStatus() models.TeleopStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *TeleopService) velocity() models.Velocity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status.Velocity
}

// Send clamps target and publishes it once. The attempt is always recorded in
// the command history.
func (t *TeleopService) Send(ctx context.Context, target models.Velocity) (models.TeleopStatus, error) {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	return t.sendLocked(ctx, target)
}

func (t *TeleopService) sendLocked(ctx context.Context, target models.Velocity) (models.TeleopStatus, error) {
	v := ClampVelocity(target)
	cmd := t.catalog.Velocity(v.Linear, v.Angular)
	line := cmd.String()

	entry := models.CommandHistoryEntry{Command: line, Timestamp: time.Now().UTC()}
	var sendErr error
	if err := cmd.Validate(t.allow); err != nil {
		sendErr = err
	} else {
		res, err := t.runner.Execute(ctx, line)
		sendErr = err
		entry.Output = res.Output
		entry.Error = res.Error
	}

	status := teleopStatusSent
	if v.Linear == 0 && v.Angular == 0 {
		status = teleopStatusStopped
	}
	if sendErr != nil {
		status = TeleopSendFailed
		entry.Error = TeleopSendFailed + ": " + sendErr.Error()
		t.log.Warnw("velocity publish failed", "linear", v.Linear, "angular", v.Angular, "err", sendErr)
	}
	if err := t.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		t.log.Warnw("record teleop history", "err", err)
	}

	t.mu.Lock()
	t.status = models.TeleopStatus{Velocity: v, LastCommand: line, Status: status}
	st := t.status
	t.mu.Unlock()
	return st, sendErr
}

// Nudge steps the current velocity in dir and sends it.
func (t *TeleopService) Nudge(ctx context.Context, dir Direction) (models.TeleopStatus, error) {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	v := t.velocity()
	switch dir {
	case DirForward:
		v.Linear = round2(v.Linear + LinearStep)
	case DirBackward:
		v.Linear = round2(v.Linear - LinearStep)
	case DirLeft:
		v.Angular = round2(v.Angular + AngularStep)
	case DirRight:
		v.Angular = round2(v.Angular - AngularStep)
	case DirStop:
		v = models.Velocity{}
	default:
		return t.TeleopStatus(), ErrUnknownDirection
	}
	return t.sendLocked(ctx, v)
}

// Set sends an absolute velocity. A nil component keeps its current value.
func (t *TeleopService) Set(ctx context.Context, linear, angular *float64) (models.TeleopStatus, error) {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	v := t.velocity()
	if linear != nil {
		v.Linear = *linear
	}
	if angular != nil {
		v.Angular = *angular
	}
	return t.sendLocked(ctx, v)
}

// Stop publishes a zero twist.
func (t *TeleopService) Stop(ctx context.Context) (models.TeleopStatus, error) {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	st, err := t.sendLocked(ctx, models.Velocity{})
	desc := "Robot stopped"
	if err != nil {
		desc = "Stop command failed"
	}
	recordEvent(ctx, t.events, t.log, models.EventTeleop, desc, map[string]any{"command": st.LastCommand})
	return st, err
}

func (t *TeleopService) HandleKey(ctx context.Context, key string) (models.TeleopStatus, error) {
	dir, ok := KeyDirection(key)
	if !ok {
		return t.TeleopStatus(), ErrUnknownKey
	}
	if dir == DirStop {
		return t.Stop(ctx)
	}
	return t.Nudge(ctx, dir)
}
