package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository"
	"robot_dashboard/internal/robotcmd"
)

const (
	DefaultTerminalTimeout = 10 * time.Second
	TerminalTimeoutMessage = "Command took too long to respond"
)

// TerminalService runs operator-typed commands through the bridge.
type TerminalService struct {
	runner  CommandRunner
	history HistoryRecorder
	events  repository.EventRepo
	timeout time.Duration
	log     *logger.Logger
}

func NewTerminalService(runner CommandRunner, history HistoryRecorder, events repository.EventRepo, timeout time.Duration, log *logger.Logger) *TerminalService {
	if timeout <= 0 {
		timeout = DefaultTerminalTimeout
	}
	return &TerminalService{runner: runner, history: history, events: events, timeout: timeout, log: logger.OrNop(log)}
}

// RunCommand executes command with the terminal timeout. Command failures are
// returned in the result; only an empty command is an error.
func (s *TerminalService) RunCommand(ctx context.Context, command string) (models.TerminalResult, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return models.TerminalResult{}, robotcmd.ErrEmptyCommand
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out := models.TerminalResult{Command: command}
	res, err := s.runner.Execute(tctx, command)
	switch {
	case err == nil:
		out.Output = res.Output
		out.Error = res.Error
	case errors.Is(tctx.Err(), context.DeadlineExceeded):
		out.TimedOut = true
		out.Error = TerminalTimeoutMessage
		s.log.Warnw("terminal command timed out", "command", command, "timeout", s.timeout)
	default:
		out.Error = err.Error()
	}

	bg := context.WithoutCancel(ctx)
	if err := s.history.Record(bg, models.CommandHistoryEntry{
		Command: command,
		Output:  out.Output,
		Error:   out.Error,
	}); err != nil {
		s.log.Warnw("record terminal history", "err", err)
	}
	recordEvent(bg, s.events, s.log, models.EventCommand, command, map[string]any{
		"failed":    out.Error != "" && out.Output == "",
		"timed_out": out.TimedOut,
	})
	return out, nil
}
