package models

import "time"

// MaxHistoryEntries bounds the command history.
const MaxHistoryEntries = 10

// CommandRequest is the /api/ros2 request body.
type CommandRequest struct {
	Command string `json:"command" example:"ros2 topic list -t"`
}

// CommandResponse is the /api/ros2 success body. Error carries stderr even on exit 0.
type CommandResponse struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// CommandResult is what the command client hands back to callers.
// Failed is only set by silent execution when the round trip did not succeed;
// Output then holds the failure message.
type CommandResult struct {
	Output   string `json:"output"`
	Error    string `json:"error,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
}

// CommandHistoryEntry is one executed command, newest first in listings.
type CommandHistoryEntry struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TerminalResult is the outcome of a manually entered command.
type TerminalResult struct {
	Command  string `json:"command"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
	TimedOut bool   `json:"timed_out,omitempty"`
}
