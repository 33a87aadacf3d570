package models

// Velocity is a planar twist: forward speed in m/s and yaw rate in rad/s.
type Velocity struct {
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
}

// TeleopStatus is the current teleoperation target and last outcome.
type TeleopStatus struct {
	Velocity    Velocity `json:"velocity"`
	LastCommand string   `json:"last_command,omitempty"`
	Status      string   `json:"status"`
}
