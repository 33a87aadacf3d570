// Package robotcmd builds the shell commands the dashboard sends to the robot
// host. Commands are structured (operation + argv) and rendered with shell
// quoting, so user-influenced values such as robot numbers and topic names
// never get interpreted by the shell.
package robotcmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Operation identifies what a command does.
type Operation string

const (
	OpPair          Operation = "pair"
	OpBringup       Operation = "bringup"
	OpBridge        Operation = "bridge"
	OpProbeBridge   Operation = "probe_bridge"
	OpPing          Operation = "ping"
	OpCleanup       Operation = "cleanup"
	OpVelocity      Operation = "velocity"
	OpBattery       Operation = "battery"
	OpVideoStart    Operation = "video_start"
	OpVideoStop     Operation = "video_stop"
	OpVideoProbe    Operation = "video_probe"
	OpTopicList     Operation = "topic_list"
	OpTopicInfo     Operation = "topic_info"
	OpTopicEcho     Operation = "topic_echo"
	OpInterfaceShow Operation = "interface_show"
)

var knownOps = map[Operation]struct{}{
	OpPair: {}, OpBringup: {}, OpBridge: {}, OpProbeBridge: {}, OpPing: {},
	OpCleanup: {}, OpVelocity: {}, OpBattery: {}, OpVideoStart: {}, OpVideoStop: {},
	OpVideoProbe: {}, OpTopicList: {}, OpTopicInfo: {}, OpTopicEcho: {}, OpInterfaceShow: {},
}

var (
	ErrUnknownOperation = errors.New("unknown command operation")
	ErrNotAllowed       = errors.New("command not allowed")
	ErrEmptyCommand     = errors.New("empty command")
)

// shell control characters refused in raw commands when an allow-list is active
const rawForbidden = ";&|`$<>()\n\r"

// Command is a single program invocation.
type Command struct {
	Op         Operation
	Program    string
	Args       []string
	Background bool // detach and discard output
}

// String renders the command as a shell line.
func (c Command) String() string {
	line := shellquote.Join(append([]string{c.Program}, c.Args...)...)
	if c.Background {
		return "nohup " + line + " >/dev/null 2>&1 &"
	}
	return line
}

// Validate checks the operation is known, the program is allowed and no argument
// carries control bytes.
func (c Command) Validate(allow AllowList) error {
	if _, ok := knownOps[c.Op]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, c.Op)
	}
	if strings.TrimSpace(c.Program) == "" {
		return fmt.Errorf("%s: %w", c.Op, ErrEmptyCommand)
	}
	if !allow.Allows(c.Program) {
		return fmt.Errorf("%w: %s", ErrNotAllowed, c.Program)
	}
	for _, a := range c.Args {
		if strings.ContainsAny(a, "\x00\n\r") {
			return fmt.Errorf("%s: argument contains control characters", c.Op)
		}
	}
	return nil
}

// AllowList is a set of program names. The zero value allows everything.
type AllowList struct {
	programs map[string]struct{}
}

// NewAllowList builds an allow-list; blank entries are ignored.
func NewAllowList(programs ...string) AllowList {
	a := AllowList{}
	for _, p := range programs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if a.programs == nil {
			a.programs = make(map[string]struct{}, len(programs))
		}
		a.programs[filepath.Base(p)] = struct{}{}
	}
	return a
}

// Empty reports whether the list places no restriction.
func (a AllowList) Empty() bool { return len(a.programs) == 0 }

// Allows reports whether program is permitted. Entries and program are compared
// by base name, so "/usr/bin/pgrep" and "pgrep" are equivalent.
func (a AllowList) Allows(program string) bool {
	if a.Empty() {
		return true
	}
	_, ok := a.programs[filepath.Base(program)]
	return ok
}

// CheckRaw validates a free-form command line. With an empty allow-list every
// line passes. Otherwise the line must not use shell control operators and its
// first word must be allowed.
func CheckRaw(line string, allow AllowList) error {
	if strings.TrimSpace(line) == "" {
		return ErrEmptyCommand
	}
	if allow.Empty() {
		return nil
	}
	if strings.ContainsAny(line, rawForbidden) {
		return fmt.Errorf("%w: shell control operators are not permitted", ErrNotAllowed)
	}
	words, err := shellquote.Split(line)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}
	if len(words) == 0 {
		return ErrEmptyCommand
	}
	if !allow.Allows(words[0]) {
		return fmt.Errorf("%w: %s", ErrNotAllowed, words[0])
	}
	return nil
}
