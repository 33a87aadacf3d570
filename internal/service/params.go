package service

import (
	"time"

	"robot_dashboard/internal/config"
	"robot_dashboard/internal/robotcmd"
)

// LogFilter narrows the activity log by time range and type.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // "", "PAIRING", "CONNECTION", "TELEOP", "VIDEO", "COMMAND", "ERROR"
	Limit int       // keep only the newest Limit events; 0 means all
}

// Options carries the tunables services read from configuration.
type Options struct {
	Catalog         robotcmd.Catalog
	AllowedPrograms []string // raw /api/ros2 allow-list, empty = unrestricted
	Pairing         PairingOptions
	Video           VideoOptions
	TerminalTimeout time.Duration
	SigningKey      string
	TokenTTL        time.Duration
}

type PairingOptions struct {
	StepDelay time.Duration
	Timeout   time.Duration
}

type VideoOptions struct {
	BaseURL    string
	Topic      string
	StartDelay time.Duration
	StopDelay  time.Duration
}

// OptionsFromConfig maps loaded configuration onto service options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Catalog:         robotcmd.NewCatalog(cfg.Robot.Tool, cfg.Robot.PingHost, cfg.Robot.CmdVelTopic, cfg.Robot.BatteryTopic),
		AllowedPrograms: cfg.Executor.AllowedPrograms,
		Pairing: PairingOptions{
			StepDelay: cfg.Pairing.StepDelay,
			Timeout:   cfg.Pairing.Timeout,
		},
		Video: VideoOptions{
			BaseURL:    cfg.Video.BaseURL,
			Topic:      cfg.Video.Topic,
			StartDelay: cfg.Video.StartDelay,
			StopDelay:  cfg.Video.StopDelay,
		},
		TerminalTimeout: cfg.Terminal.Timeout,
		SigningKey:      cfg.Auth.SigningKey,
		TokenTTL:        cfg.Auth.TokenTTL,
	}
}
