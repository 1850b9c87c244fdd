package event

import (
	"time"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
)

// Topic suffixes, one per kind of dashboard change.
const (
	TopicTelemetry     = "telemetry"
	TopicNotifications = "notifications"
	TopicActuators     = "actuators"
)

// Measurements written to InfluxDB.
const (
	MeasurementTelemetry = "greenhouse_telemetry"
	MeasurementEvent     = "dashboard_event"
)

// CommonEvent is the sink-neutral form of a dashboard change.
type CommonEvent struct {
	Topic       string // telemetry | notifications | actuators
	Measurement string
	EventType   string // telemetry | irrigation.started | lights | actuators ...
	User        string
	Severity    string // info|success|warning
	Fields      map[string]interface{}
	Timestamp   time.Time
	// Payload is the source message, published as is by the MQTT mirror.
	Payload interface{}
}

func FromTelemetry(e model.TelemetryEvent) CommonEvent {
	return CommonEvent{
		Topic:       TopicTelemetry,
		Measurement: MeasurementTelemetry,
		EventType:   "telemetry",
		User:        e.User,
		Severity:    "info",
		Fields: map[string]interface{}{
			"temperature": e.Temperature,
			"humidity":    e.Humidity,
		},
		Timestamp: e.Timestamp,
		Payload:   e,
	}
}

func FromNotification(e model.NotificationEvent) CommonEvent {
	return CommonEvent{
		Topic:       TopicNotifications,
		Measurement: MeasurementEvent,
		EventType:   e.Kind,
		User:        e.User,
		Severity:    e.Level,
		Fields: map[string]interface{}{
			"message": e.Message,
			"id":      e.ID,
		},
		Timestamp: e.Timestamp,
		Payload:   e,
	}
}

func FromActuators(e model.ActuatorEvent) CommonEvent {
	fields := map[string]interface{}{
		"irrigating": e.Irrigating,
		"lights_on":  e.LightsOn,
	}
	if e.LastIrrigation != nil {
		fields["last_irrigation_unix"] = e.LastIrrigation.Unix()
	}
	return CommonEvent{
		Topic:       TopicActuators,
		Measurement: MeasurementEvent,
		EventType:   "actuators",
		User:        e.User,
		Severity:    "info",
		Fields:      fields,
		Timestamp:   e.Timestamp,
		Payload:     e,
	}
}
