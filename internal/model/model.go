package model

import (
	"github.com/LeonardoBeccarini/greenpower/internal/model/entities"
	"github.com/LeonardoBeccarini/greenpower/internal/model/messages"
)

// Alias per esporre tipi comuni ai servizi

type (
	Session          = entities.Session
	SessionState     = entities.SessionState
	Telemetry        = entities.Telemetry
	Actuators        = entities.Actuators
	Notification     = entities.Notification
	NotificationKind = entities.NotificationKind
	Level            = entities.Level
	TemperatureBand  = entities.TemperatureBand
	HumidityBand     = entities.HumidityBand

	TelemetryEvent    = messages.TelemetryEvent
	NotificationEvent = messages.NotificationEvent
	ActuatorEvent     = messages.ActuatorEvent
)

const (
	StateLoggedOut      = entities.StateLoggedOut
	StateAuthenticating = entities.StateAuthenticating
	StateLoggedIn       = entities.StateLoggedIn
)

// DefaultTelemetry is the reading a fresh dashboard starts from.
var DefaultTelemetry = entities.DefaultTelemetry
