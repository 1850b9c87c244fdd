package entities

import "time"

// Level is the severity a notification is rendered with.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
)

// NotificationKind identifies what produced a notification.
type NotificationKind string

const (
	KindIrrigationMissing   NotificationKind = "irrigation.missing"
	KindIrrigationOverdue   NotificationKind = "irrigation.overdue"
	KindIrrigationStarted   NotificationKind = "irrigation.started"
	KindIrrigationCompleted NotificationKind = "irrigation.completed"
	KindLights              NotificationKind = "lights"
	KindCameras             NotificationKind = "cameras"
)

// Notification is a timestamped entry of the dashboard log.
type Notification struct {
	ID      string           `json:"id"`
	At      time.Time        `json:"at"`
	Level   Level            `json:"level"`
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}
