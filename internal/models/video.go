package models

// VideoServerState tracks web_video_server including its transitions.
type VideoServerState string

const (
	VideoOff      VideoServerState = "off"
	VideoStarting VideoServerState = "starting"
	VideoOn       VideoServerState = "on"
	VideoStopping VideoServerState = "stopping"
)

type VideoStatus struct {
	State       VideoServerState `json:"state"`
	StreamURL   string           `json:"stream_url"`
	SnapshotURL string           `json:"snapshot_url"`
	Message     string           `json:"message,omitempty"`
}
