package entities

import "time"

// Actuators is the simulated irrigation and lighting state.
// LastIrrigation is set only when an irrigation run completes.
type Actuators struct {
	Irrigating     bool       `json:"irrigating"`
	LightsOn       bool       `json:"lights_on"`
	LastIrrigation *time.Time `json:"last_irrigation,omitempty"`
}
