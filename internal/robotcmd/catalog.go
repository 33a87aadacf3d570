package robotcmd

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

const (
	ros2Program     = "ros2"
	pgrepProgram    = "pgrep"
	pkillProgram    = "pkill"
	pingProgram     = "ping"
	videoServerName = "web_video_server"
	twistType       = "geometry_msgs/msg/Twist"
)

var (
	topicNameRe     = regexp.MustCompile(`^/[A-Za-z0-9_/~]+$`)
	interfaceTypeRe = regexp.MustCompile(`^[A-Za-z0-9_]+(/[A-Za-z0-9_]+)+$`)

	ErrInvalidTopic         = errors.New("invalid topic name")
	ErrInvalidInterfaceType = errors.New("invalid interface type")
)

// Catalog knows the concrete command vocabulary for one robot fleet.
type Catalog struct {
	Tool         string // robot helper CLI, e.g. "waffle"
	PingHost     string // fmt pattern with one %d; empty disables ping
	CmdVelTopic  string
	BatteryTopic string
}

// NewCatalog fills empty topic fields with the TurtleBot3 defaults.
func NewCatalog(tool, pingHost, cmdVelTopic, batteryTopic string) Catalog {
	if cmdVelTopic == "" {
		cmdVelTopic = "/cmd_vel"
	}
	if batteryTopic == "" {
		batteryTopic = "/battery_state"
	}
	return Catalog{Tool: tool, PingHost: pingHost, CmdVelTopic: cmdVelTopic, BatteryTopic: batteryTopic}
}

// Programs lists every program the catalog can emit.
func (c Catalog) Programs() []string {
	return []string{c.Tool, ros2Program, pgrepProgram, pkillProgram, pingProgram}
}

// AllowList returns an allow-list covering exactly the catalog's programs.
func (c Catalog) AllowList() AllowList {
	return NewAllowList(c.Programs()...)
}

func (c Catalog) robotStep(op Operation, n int, background bool) Command {
	return Command{Op: op, Program: c.Tool, Args: []string{strconv.Itoa(n), string(op)}, Background: background}
}

func (c Catalog) Pair(n int) Command    { return c.robotStep(OpPair, n, false) }
func (c Catalog) Bringup(n int) Command { return c.robotStep(OpBringup, n, true) }
func (c Catalog) Bridge(n int) Command  { return c.robotStep(OpBridge, n, true) }

// processPattern matches "<tool> <n> <stage>" without matching the pgrep/pkill
// command line itself: "[w]affle" matches "waffle" but not "[w]affle".
func (c Catalog) processPattern(n int, stage Operation) string {
	return fmt.Sprintf("%s %d %s", bracketFirst(c.Tool), n, stage)
}

func bracketFirst(s string) string {
	if s == "" {
		return s
	}
	return "[" + s[:1] + "]" + s[1:]
}

// ProbeBridge prints matching processes, exiting non-zero when none run.
func (c Catalog) ProbeBridge(n int) Command {
	return Command{Op: OpProbeBridge, Program: pgrepProgram, Args: []string{"-af", c.processPattern(n, OpBridge)}}
}

// Ping returns a single-packet ping to the robot, or false when disabled.
func (c Catalog) Ping(n int) (Command, bool) {
	if c.PingHost == "" {
		return Command{}, false
	}
	host := fmt.Sprintf(c.PingHost, n)
	return Command{Op: OpPing, Program: pingProgram, Args: []string{"-c", "1", "-W", "2", host}}, true
}

// Cleanup kills the bridge and bringup processes of robot n.
func (c Catalog) Cleanup(n int) []Command {
	return []Command{
		{Op: OpCleanup, Program: pkillProgram, Args: []string{"-f", c.processPattern(n, OpBridge)}},
		{Op: OpCleanup, Program: pkillProgram, Args: []string{"-f", c.processPattern(n, OpBringup)}},
	}
}

// TwistYAML formats a velocity as the ROS 2 Twist message literal.
func TwistYAML(linear, angular float64) string {
	return fmt.Sprintf("{linear: {x: %.2f, y: 0.0, z: 0.0}, angular: {x: 0.0, y: 0.0, z: %.2f}}", linear, angular)
}

// Velocity publishes one Twist on the cmd_vel topic.
func (c Catalog) Velocity(linear, angular float64) Command {
	return Command{
		Op:      OpVelocity,
		Program: ros2Program,
		Args:    []string{"topic", "pub", "--once", c.CmdVelTopic, twistType, TwistYAML(linear, angular)},
	}
}

// Battery echoes a single battery percentage sample.
func (c Catalog) Battery() Command {
	return Command{
		Op:      OpBattery,
		Program: ros2Program,
		Args:    []string{"topic", "echo", "--once", "--field", "percentage", c.BatteryTopic},
	}
}

func (c Catalog) VideoStart() Command {
	return Command{Op: OpVideoStart, Program: ros2Program, Args: []string{"run", videoServerName, videoServerName}, Background: true}
}

func (c Catalog) VideoStop() Command {
	return Command{Op: OpVideoStop, Program: pkillProgram, Args: []string{"-f", bracketFirst(videoServerName)}}
}

func (c Catalog) VideoProbe() Command {
	return Command{Op: OpVideoProbe, Program: pgrepProgram, Args: []string{"-af", bracketFirst(videoServerName)}}
}

func (c Catalog) TopicList() Command {
	return Command{Op: OpTopicList, Program: ros2Program, Args: []string{"topic", "list", "-t"}}
}

func (c Catalog) TopicInfo(name string) (Command, error) {
	if !topicNameRe.MatchString(name) {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidTopic, name)
	}
	return Command{Op: OpTopicInfo, Program: ros2Program, Args: []string{"topic", "info", name}}, nil
}

// TopicEcho reads a single message from a topic.
func (c Catalog) TopicEcho(name string) (Command, error) {
	if !topicNameRe.MatchString(name) {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidTopic, name)
	}
	return Command{Op: OpTopicEcho, Program: ros2Program, Args: []string{"topic", "echo", "--once", name}}, nil
}

func (c Catalog) InterfaceShow(typ string) (Command, error) {
	if !interfaceTypeRe.MatchString(typ) {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidInterfaceType, typ)
	}
	return Command{Op: OpInterfaceShow, Program: ros2Program, Args: []string{"interface", "show", typ}}, nil
}
