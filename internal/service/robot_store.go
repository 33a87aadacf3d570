package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository"
)

// ActionKind enumerates the writes RobotStore accepts.
type ActionKind int

const (
	ActSelectRobot ActionKind = iota
	ActSetPaired
	ActSetBattery
	ActReset
	ActHold
	ActRelease
)

// Source identifies who dispatched an action.
type Source int

const (
	SourceOperator Source = iota
	SourcePairing
	SourceMonitor
)

func (s Source) String() string {
	switch s {
	case SourceOperator:
		return "operator"
	case SourcePairing:
		return "pairing"
	case SourceMonitor:
		return "monitor"
	default:
		return "unknown"
	}
}

// Action is a single write against the robot state.
// IfVersion, when non-zero, makes the write conditional on the store still
// being at that version.
type Action struct {
	Kind        ActionKind
	Source      Source
	RobotNumber int
	Paired      bool
	Battery     int
	IfVersion   uint64
}

var (
	ErrStoreHeld          = errors.New("robot state is held by a pairing attempt")
	ErrStaleWrite         = errors.New("robot state changed since it was read")
	ErrInvalidRobotNumber = fmt.Errorf("robot number must be between %d and %d", models.MinRobotNumber, models.MaxRobotNumber)
	ErrNoRobotSelected    = errors.New("no robot selected")
)

// RobotStore is the single writer of the persisted robot connection state.
// Every mutation goes through Dispatch; it is persisted before subscribers see it.
type RobotStore struct {
	repo repository.StateRepo
	log  *logger.Logger

	mu      sync.Mutex
	state   models.RobotState
	version uint64
	held    bool
	subs    map[chan models.RobotState]struct{}
}

func NewRobotStore(repo repository.StateRepo, log *logger.Logger) *RobotStore {
	return &RobotStore{
		repo:    repo,
		log:     logger.OrNop(log),
		version: 1,
		subs:    make(map[chan models.RobotState]struct{}),
	}
}

// Hydrate loads the persisted row. Out of range robot numbers are discarded.
func (s *RobotStore) Hydrate(ctx context.Context) error {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if st.RobotNumber != 0 && !validRobotNumber(st.RobotNumber) {
		s.log.Warnw("discarding persisted robot number", "robot_number", st.RobotNumber)
		st = models.RobotState{}
	}

	s.mu.Lock()
	s.state = st
	s.version++
	s.mu.Unlock()
	return nil
}

func (s *RobotStore) State() models.RobotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the state together with its version, for use with Action.IfVersion.
func (s *RobotStore) Snapshot() (models.RobotState, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.version
}

// Held reports whether a pairing attempt currently owns the paired flag.
func (s *RobotStore) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Dispatch applies a to the state, persists the result and notifies subscribers.
// It returns the state after the action.
func (s *RobotStore) Dispatch(ctx context.Context, a Action) (models.RobotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a.Kind {
	case ActHold:
		s.held = true
		return s.state, nil
	case ActRelease:
		s.held = false
		return s.state, nil
	}

	if s.held && a.Source == SourceMonitor {
		return s.state, ErrStoreHeld
	}
	if a.IfVersion != 0 && a.IfVersion != s.version {
		return s.state, ErrStaleWrite
	}

	next, err := reduce(s.state, a)
	if err != nil {
		return s.state, err
	}
	if sameState(next, s.state) {
		return s.state, nil
	}
	next.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, next); err != nil {
		return s.state, fmt.Errorf("persist robot state: %w", err)
	}
	s.state = next
	s.version++
	s.log.Debugw("robot state updated",
		"source", a.Source.String(),
		"robot_number", next.RobotNumber,
		"robot_paired", next.RobotPaired,
		"version", s.version,
	)
	s.publishLocked(next)
	return next, nil
}

// Subscribe returns a channel that receives the latest state after each write.
// Slow readers only ever see the newest value. Call the returned func to unsubscribe.
func (s *RobotStore) Subscribe() (<-chan models.RobotState, func()) {
	ch := make(chan models.RobotState, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *RobotStore) publishLocked(st models.RobotState) {
	for ch := range s.subs {
		select {
		case ch <- st:
			continue
		default:
		}
		// drop the stale value, then retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

// reduce is the pure transition function of the store.
func reduce(cur models.RobotState, a Action) (models.RobotState, error) {
	next := cur
	switch a.Kind {
	case ActSelectRobot:
		if !validRobotNumber(a.RobotNumber) {
			return cur, ErrInvalidRobotNumber
		}
		if a.RobotNumber != cur.RobotNumber {
			next.BatteryLevel = 0
		}
		next.RobotNumber = a.RobotNumber
		next.RobotPaired = false
	case ActSetPaired:
		if a.Paired && !cur.HasRobot() {
			return cur, ErrNoRobotSelected
		}
		next.RobotPaired = a.Paired
	case ActSetBattery:
		next.BatteryLevel = clampInt(a.Battery, 0, 100)
	case ActReset:
		next = models.RobotState{ID: cur.ID}
	default:
		return cur, fmt.Errorf("unknown action kind %d", a.Kind)
	}
	return next, nil
}

func sameState(a, b models.RobotState) bool {
	return a.RobotNumber == b.RobotNumber &&
		a.RobotPaired == b.RobotPaired &&
		a.BatteryLevel == b.BatteryLevel
}

func validRobotNumber(n int) bool {
	return n >= models.MinRobotNumber && n <= models.MaxRobotNumber
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
