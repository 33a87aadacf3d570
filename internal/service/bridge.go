package service

import (
	"context"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/robotcmd"
)

// BridgeService backs POST /api/ros2: it runs the command line on this host
// and returns what the shell printed.
type BridgeService struct {
	exec  CommandExecutor
	allow robotcmd.AllowList
	log   *logger.Logger
}

// NewBridgeService restricts raw commands to allowed programs. An empty list
// keeps the endpoint unrestricted.
func NewBridgeService(exec CommandExecutor, allowed []string, log *logger.Logger) *BridgeService {
	return &BridgeService{exec: exec, allow: robotcmd.NewAllowList(allowed...), log: logger.OrNop(log)}
}

// Execute returns stdout and stderr of a zero exit. A non-zero exit, spawn
// failure or cancellation is an error.
func (b *BridgeService) Execute(ctx context.Context, command string) (models.CommandResponse, error) {
	if err := robotcmd.CheckRaw(command, b.allow); err != nil {
		b.log.Warnw("command rejected", "command", command, "err", err)
		return models.CommandResponse{}, err
	}
	res, err := b.exec.Run(ctx, command)
	if err != nil {
		b.log.Infow("command failed", "command", command, "err", err)
		return models.CommandResponse{}, err
	}
	b.log.Debugw("command executed", "command", command, "duration", res.Duration)
	return models.CommandResponse{Output: res.Stdout, Error: res.Stderr}, nil
}
