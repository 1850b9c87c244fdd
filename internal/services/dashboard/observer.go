package dashboard

import "github.com/LeonardoBeccarini/greenpower/internal/model"

// Observer receives a write-only copy of every dashboard change.
// Implementations must not call back into the Controller.
type Observer interface {
	TelemetryUpdated(model.TelemetryEvent)
	NotificationAdded(model.NotificationEvent)
	ActuatorsChanged(model.ActuatorEvent)
}

// Observers fans every event out to each member in order.
type Observers []Observer

func (o Observers) TelemetryUpdated(e model.TelemetryEvent) {
	for _, x := range o {
		x.TelemetryUpdated(e)
	}
}

func (o Observers) NotificationAdded(e model.NotificationEvent) {
	for _, x := range o {
		x.NotificationAdded(e)
	}
}

func (o Observers) ActuatorsChanged(e model.ActuatorEvent) {
	for _, x := range o {
		x.ActuatorsChanged(e)
	}
}

type nopObserver struct{}

func (nopObserver) TelemetryUpdated(model.TelemetryEvent) {}
func (nopObserver) NotificationAdded(model.NotificationEvent) {}
func (nopObserver) ActuatorsChanged(model.ActuatorEvent) {}
