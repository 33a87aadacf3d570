package models

import "time"

// MonitorStatus describes the connection poller.
type MonitorStatus struct {
	Checking    bool      `json:"checking"`
	LastChecked time.Time `json:"last_checked,omitempty"`
	Connected   bool      `json:"connected"`
}

// DashboardSnapshot is pushed over the websocket stream.
type DashboardSnapshot struct {
	Robot   RobotState    `json:"robot"`
	Pairing PairingStatus `json:"pairing"`
	Monitor MonitorStatus `json:"monitor"`
}
