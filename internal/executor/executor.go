package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"robot_dashboard/internal/logger"
)

const (
	DefaultShell     = "/bin/sh"
	defaultWaitDelay = 2 * time.Second
)

var ErrEmptyCommand = errors.New("command is empty")

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ExitError reports a command that could not be started or exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int // -1 when the process never ran to completion
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := "Command failed: " + e.Command
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return msg + "\n" + s
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// Runner starts a process and waits for it.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdout, stderr *bytes.Buffer) error
}

// OSRunner runs real processes.
type OSRunner struct {
	// WaitDelay bounds how long Wait blocks on output pipes held open by
	// background children after the shell itself has exited.
	WaitDelay time.Duration
}

func (r OSRunner) Run(ctx context.Context, name string, args []string, stdout, stderr *bytes.Buffer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = r.WaitDelay
	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		// shell exited 0, a detached child kept the pipes
		return nil
	}
	return err
}

// ShellExecutor runs command strings through a shell. It applies no timeout of
// its own; cancelling ctx kills the shell.
type ShellExecutor struct {
	shell  string
	runner Runner
	log    *logger.Logger
}

func NewShellExecutor(shell string, waitDelay time.Duration, log *logger.Logger) *ShellExecutor {
	if waitDelay <= 0 {
		waitDelay = defaultWaitDelay
	}
	return NewShellExecutorWithRunner(shell, OSRunner{WaitDelay: waitDelay}, log)
}

func NewShellExecutorWithRunner(shell string, runner Runner, log *logger.Logger) *ShellExecutor {
	if strings.TrimSpace(shell) == "" {
		shell = DefaultShell
	}
	return &ShellExecutor{shell: shell, runner: runner, log: logger.OrNop(log)}
}

// Run executes command with `<shell> -c`. Stderr is returned even on success.
func (e *ShellExecutor) Run(ctx context.Context, command string) (Result, error) {
	if strings.TrimSpace(command) == "" {
		return Result{}, ErrEmptyCommand
	}

	var stdout, stderr bytes.Buffer
	start := time.Now()
	err := e.runner.Run(ctx, e.shell, []string{"-c", command}, &stdout, &stderr)
	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}
	if err == nil {
		e.log.Debugw("command_finished", "command", command, "duration", res.Duration)
		return res, nil
	}

	exitErr := &ExitError{Command: command, ExitCode: -1, Stderr: res.Stderr, Err: err}
	var procErr *exec.ExitError
	if errors.As(err, &procErr) {
		exitErr.ExitCode = procErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		exitErr.Err = fmt.Errorf("%w (%v)", ctxErr, err)
	}
	e.log.Infow("command_failed", "command", command, "exit_code", exitErr.ExitCode, "duration", res.Duration, "err", err)
	return res, exitErr
}
