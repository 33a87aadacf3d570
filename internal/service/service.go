package service

import (
	"context"
	"fmt"
	"time"

	"robot_dashboard/internal/executor"
	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository"
)

// CommandRunner sends commands to the /api/ros2 bridge. client.Client implements it.
type CommandRunner interface {
	Execute(ctx context.Context, command string) (models.CommandResult, error)
	ExecuteSilent(ctx context.Context, command string) models.CommandResult
}

// CommandExecutor runs commands on this host. executor.ShellExecutor implements it.
type CommandExecutor interface {
	Run(ctx context.Context, command string) (executor.Result, error)
}

// Authorization registers operators and issues the bearer tokens /api/v1 requires.
type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Bridge executes raw commands for the /api/ros2 endpoint.
type Bridge interface {
	Execute(ctx context.Context, command string) (models.CommandResponse, error)
}

// Robot exposes the connection state store read side.
type Robot interface {
	State() models.RobotState
	Subscribe() (<-chan models.RobotState, func())
}

// Monitor is the background connection poller.
// Stop it via context cancellation.
type Monitor interface {
	Run(ctx context.Context, interval time.Duration)
	CheckNow(ctx context.Context) bool
	MonitorStatus() models.MonitorStatus
	RefreshBattery(ctx context.Context) (models.RobotState, error)
}

// Pairing drives the Introduction -> Pairing -> Result wizard.
type Pairing interface {
	PairingStatus() models.PairingStatus
	Begin() (models.PairingStatus, error)
	Submit(ctx context.Context, robotNumber string) (models.PairingStatus, error)
	Pair(ctx context.Context, robotNumber int) error
	Reset(ctx context.Context) (models.PairingStatus, error)
	Disconnect(ctx context.Context) (models.PairingStatus, error)
}

// Teleop builds and sends velocity commands.
type Teleop interface {
	TeleopStatus() models.TeleopStatus
	Send(ctx context.Context, target models.Velocity) (models.TeleopStatus, error)
	Nudge(ctx context.Context, dir Direction) (models.TeleopStatus, error)
	Set(ctx context.Context, linear, angular *float64) (models.TeleopStatus, error)
	Stop(ctx context.Context) (models.TeleopStatus, error)
	HandleKey(ctx context.Context, key string) (models.TeleopStatus, error)
}

type History interface {
	Record(ctx context.Context, e models.CommandHistoryEntry) error
	Recent(ctx context.Context) ([]models.CommandHistoryEntry, error)
	Clear(ctx context.Context) error
}

type Terminal interface {
	RunCommand(ctx context.Context, command string) (models.TerminalResult, error)
}

type Topics interface {
	ListTopics(ctx context.Context) ([]models.Topic, error)
	TopicInfo(ctx context.Context, name string) (string, error)
	EchoTopic(ctx context.Context, name string) (string, error)
	ShowInterface(ctx context.Context, typ string) (string, error)
}

type Video interface {
	VideoStatus(ctx context.Context) models.VideoStatus
	StartVideo(ctx context.Context) (models.VideoStatus, error)
	StopVideo(ctx context.Context) (models.VideoStatus, error)
}

// EventLog exposes the append-only activity log.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.RobotEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Bridge
	Robot
	Monitor
	Pairing
	Teleop
	History
	Terminal
	Topics
	Video
	EventLog

	closers []func()
}

// Deps are the collaborators NewService wires together.
type Deps struct {
	Repos    *repository.Repository
	Runner   CommandRunner
	Executor CommandExecutor // nil when this process does not serve /api/ros2
	Options  Options
	Log      *logger.Logger
}

// NewService hydrates the robot state store and builds every sub-service on top of it.
func NewService(ctx context.Context, d Deps) (*Service, error) {
	log := logger.OrNop(d.Log)
	opts := d.Options
	allow := opts.Catalog.AllowList()

	store := NewRobotStore(d.Repos.StateRepo, log.Named("store"))
	if err := store.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate robot state: %w", err)
	}

	history := NewHistoryService(d.Repos.HistoryRepo, log.Named("history"))
	pairing := NewPairingService(store, d.Runner, opts.Catalog, allow, d.Repos.EventRepo, opts.Pairing, log.Named("pairing"))

	s := &Service{
		Authorization: NewAuthService(d.Repos.Operators, opts.SigningKey, opts.TokenTTL),
		Robot:         store,
		Monitor:       NewConnectionMonitor(store, d.Runner, opts.Catalog, allow, d.Repos.EventRepo, log.Named("monitor")),
		Pairing:       pairing,
		Teleop:        NewTeleopService(d.Runner, history, opts.Catalog, allow, d.Repos.EventRepo, log.Named("teleop")),
		History:       history,
		Terminal:      NewTerminalService(d.Runner, history, d.Repos.EventRepo, opts.TerminalTimeout, log.Named("terminal")),
		Topics:        NewTopicService(d.Runner, opts.Catalog, allow),
		Video:         NewVideoService(d.Runner, store, opts.Catalog, allow, d.Repos.EventRepo, opts.Video, log.Named("video")),
		EventLog:      NewEventLogService(d.Repos.EventRepo),
		closers:       []func(){pairing.Close},
	}
	if d.Executor != nil {
		s.Bridge = NewBridgeService(d.Executor, opts.AllowedPrograms, log.Named("bridge"))
	}
	return s, nil
}

// Close stops background work owned by the services, such as an in-flight pairing attempt.
func (s *Service) Close() {
	for _, c := range s.closers {
		c()
	}
}
