package entities

import "math"

// TemperatureBand is the display classification of a temperature.
type TemperatureBand string

const (
	TemperatureCold    TemperatureBand = "cold"
	TemperatureOptimal TemperatureBand = "optimal"
	TemperatureWarm    TemperatureBand = "warm"
	TemperatureHot     TemperatureBand = "hot"
)

// HumidityBand is the display classification of a relative humidity.
type HumidityBand string

const (
	HumidityLow     HumidityBand = "low"
	HumidityOptimal HumidityBand = "optimal"
	HumidityHigh    HumidityBand = "high"
)

// ClassifyTemperature: <18 cold, [18,25) optimal, [25,30) warm, >=30 hot.
func ClassifyTemperature(c float64) TemperatureBand {
	switch {
	case c < 18:
		return TemperatureCold
	case c < 25:
		return TemperatureOptimal
	case c < 30:
		return TemperatureWarm
	default:
		return TemperatureHot
	}
}

// ClassifyHumidity: >70 high, (50,70] optimal, <=50 low.
func ClassifyHumidity(p float64) HumidityBand {
	switch {
	case p > 70:
		return HumidityHigh
	case p > 50:
		return HumidityOptimal
	default:
		return HumidityLow
	}
}

// TemperatureGauge maps a temperature to a 0..100 progress value (40 °C full scale).
func TemperatureGauge(c float64) float64 {
	return math.Max(0, math.Min(100, c/gaugeMaxTemperature*100))
}

// HumidityGauge maps a humidity to a 0..100 progress value.
func HumidityGauge(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}
