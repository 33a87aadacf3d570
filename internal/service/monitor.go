package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository"
	"robot_dashboard/internal/robotcmd"
)

// DefaultMonitorInterval is how often the bridge probe runs when unconfigured.
const DefaultMonitorInterval = 5 * time.Second

var ErrBatteryUnavailable = errors.New("battery level unavailable")

// ConnectionMonitor polls the robot host for a live bridge process and keeps
// the robot_paired flag in sync with what it finds.
type ConnectionMonitor struct {
	store   *RobotStore
	runner  CommandRunner
	catalog robotcmd.Catalog
	allow   robotcmd.AllowList
	events  repository.EventRepo
	log     *logger.Logger

	checking atomic.Bool

	mu          sync.Mutex
	lastChecked time.Time
	connected   bool
}

func NewConnectionMonitor(
	store *RobotStore,
	runner CommandRunner,
	catalog robotcmd.Catalog,
	allow robotcmd.AllowList,
	events repository.EventRepo,
	log *logger.Logger,
) *ConnectionMonitor {
	return &ConnectionMonitor{
		store:   store,
		runner:  runner,
		catalog: catalog,
		allow:   allow,
		events:  events,
		log:     logger.OrNop(log),
	}
}

// Run checks once immediately and then on every tick until ctx is done.
func (m *ConnectionMonitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	m.log.Infow("connection monitor started", "interval", interval)
	defer m.log.Infow("connection monitor stopped")

	m.CheckNow(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow probes the bridge of the selected robot. It returns false without
// doing anything when no robot is selected or another check is in flight.
func (m *ConnectionMonitor) CheckNow(ctx context.Context) bool {
	state, version := m.store.Snapshot()
	if !state.HasRobot() {
		return false
	}
	if !m.checking.CompareAndSwap(false, true) {
		m.log.Debugw("check skipped, previous check still running")
		return false
	}
	defer m.checking.Store(false)

	alive := m.probe(ctx, state.RobotNumber)
	if ctx.Err() != nil {
		return true
	}

	m.mu.Lock()
	m.lastChecked = time.Now().UTC()
	m.connected = alive
	m.mu.Unlock()

	if alive == state.RobotPaired {
		return true
	}

	_, err := m.store.Dispatch(ctx, Action{
		Kind:      ActSetPaired,
		Source:    SourceMonitor,
		Paired:    alive,
		IfVersion: version,
	})
	switch {
	case errors.Is(err, ErrStoreHeld), errors.Is(err, ErrStaleWrite):
		m.log.Debugw("verdict discarded", "robot_number", state.RobotNumber, "err", err)
		return true
	case err != nil:
		m.log.Warnw("update robot state", "robot_number", state.RobotNumber, "err", err)
		return true
	}

	desc := fmt.Sprintf("Robot %d connection lost", state.RobotNumber)
	if alive {
		desc = fmt.Sprintf("Robot %d connection restored", state.RobotNumber)
	}
	recordEvent(ctx, m.events, m.log, models.EventConnection, desc, map[string]any{
		"robot_number": state.RobotNumber,
		"connected":    alive,
	})
	return true
}

// probe is connected only if the bridge probe printed something and, when a
// ping host is configured, the ping succeeded too.
func (m *ConnectionMonitor) probe(ctx context.Context, n int) bool {
	cmd := m.catalog.ProbeBridge(n)
	if err := cmd.Validate(m.allow); err != nil {
		m.log.Errorw("probe command rejected", "err", err)
		return false
	}
	res := m.runner.ExecuteSilent(ctx, cmd.String())
	if res.Failed || strings.TrimSpace(res.Output) == "" {
		return false
	}

	ping, ok := m.catalog.Ping(n)
	if !ok {
		return true
	}
	if err := ping.Validate(m.allow); err != nil {
		m.log.Errorw("ping command rejected", "err", err)
		return false
	}
	return !m.runner.ExecuteSilent(ctx, ping.String()).Failed
}

func (m *ConnectionMonitor) MonitorStatus() models.MonitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.MonitorStatus{
		Checking:    m.checking.Load(),
		LastChecked: m.lastChecked,
		Connected:   m.connected,
	}
}

// RefreshBattery reads the battery percentage of the paired robot into the store.
func (m *ConnectionMonitor) RefreshBattery(ctx context.Context) (models.RobotState, error) {
	state := m.store.State()
	if !state.RobotPaired {
		return state, ErrRobotNotPaired
	}
	cmd := m.catalog.Battery()
	if err := cmd.Validate(m.allow); err != nil {
		return state, err
	}
	res := m.runner.ExecuteSilent(ctx, cmd.String())
	if res.Failed {
		m.log.Debugw("battery read failed", "output", res.Output)
		return state, ErrBatteryUnavailable
	}
	pct, err := ParseBatteryPercentage(res.Output)
	if err != nil {
		m.log.Debugw("battery output not understood", "output", res.Output, "err", err)
		return state, ErrBatteryUnavailable
	}
	return m.store.Dispatch(ctx, Action{Kind: ActSetBattery, Source: SourceMonitor, Battery: pct})
}

// ParseBatteryPercentage reads the first number printed by `ros2 topic echo`.
// sensor_msgs/BatteryState reports 0..1; larger values are taken as percent.
func ParseBatteryPercentage(out string) (int, error) {
	for _, f := range strings.Fields(out) {
		f = strings.TrimSuffix(strings.TrimSpace(f), "---")
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		if v <= 1 {
			v *= 100
		}
		return clampInt(int(math.Round(v)), 0, 100), nil
	}
	return 0, fmt.Errorf("no number in %q", out)
}
