package models

// UnknownTopicType is used when `ros2 topic list -t` prints no type.
const UnknownTopicType = "Unknown"

type Topic struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
