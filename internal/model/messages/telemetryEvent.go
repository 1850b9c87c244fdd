package messages

import "time"

// TelemetryEvent is mirrored to observers after every simulator tick.
type TelemetryEvent struct {
	User        string    `json:"user"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Timestamp   time.Time `json:"timestamp"`
}
