package entities

import "math"

const (
	MinTemperature = 15.0 // °C
	MaxTemperature = 35.0
	MinHumidity    = 30.0 // %
	MaxHumidity    = 90.0

	DefaultTemperature = 24.0
	DefaultHumidity    = 65.0

	// full scale of the temperature gauge
	gaugeMaxTemperature = 40.0
)

// Telemetry holds the simulated greenhouse readings.
type Telemetry struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
}

// DefaultTelemetry is the reading a fresh dashboard starts from.
func DefaultTelemetry() Telemetry {
	return Telemetry{Temperature: DefaultTemperature, Humidity: DefaultHumidity}
}

// Clamped returns t with both readings forced into their valid range.
func (t Telemetry) Clamped() Telemetry {
	return Telemetry{
		Temperature: clamp(t.Temperature, MinTemperature, MaxTemperature),
		Humidity:    clamp(t.Humidity, MinHumidity, MaxHumidity),
	}
}

// InRange reports whether both readings are inside their valid range.
func (t Telemetry) InRange() bool {
	return t.Temperature >= MinTemperature && t.Temperature <= MaxTemperature &&
		t.Humidity >= MinHumidity && t.Humidity <= MaxHumidity
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
