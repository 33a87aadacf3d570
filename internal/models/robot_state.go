package models

import "time"

// Valid robot numbers for pairing.
const (
	MinRobotNumber = 1
	MaxRobotNumber = 99
)

// RobotState is the persisted connection snapshot (single row, id=1).
type RobotState struct {
	ID           int       `json:"-"`
	RobotNumber  int       `json:"robot_number"`  // 0 when no robot is selected
	RobotPaired  bool      `json:"robot_paired"`  // true only while the bridge is believed to run
	BatteryLevel int       `json:"battery_level"` // percent, 0 when unknown
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRobot reports whether a robot number has been selected.
func (s RobotState) HasRobot() bool {
	return s.RobotNumber != 0
}
