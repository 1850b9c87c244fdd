package messages

import "time"

// ActuatorEvent è pubblicato ad ogni cambio di stato di irrigazione o luci.
type ActuatorEvent struct {
	User           string     `json:"user"`
	Irrigating     bool       `json:"irrigating"`
	LightsOn       bool       `json:"lights_on"`
	LastIrrigation *time.Time `json:"last_irrigation,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}
