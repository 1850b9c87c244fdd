package sensor_simulator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
)

// ====== Tunables ======
const (
	// TemperatureStep: ampiezza massima della variazione per tick (°C).
	TemperatureStep = 1.0
	// HumidityStep: ampiezza massima della variazione per tick (%).
	HumidityStep = 2.0
)

// Source yields uniform values in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a seeded math/rand source.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Step describes one random-walk update.
type Step struct {
	Before model.Telemetry
	Delta  model.Telemetry // pre-clamp perturbation
	After  model.Telemetry
}

// DataGenerator mantiene lo stato interno della telemetria e lo aggiorna a ogni tick
// con una random walk simmetrica e limitata.
type DataGenerator struct {
	mu    sync.Mutex
	src   Source
	state model.Telemetry
}

// NewDataGenerator crea un generatore a partire da initial. Un src nil usa un seed temporale.
func NewDataGenerator(src Source, initial model.Telemetry) *DataGenerator {
	if src == nil {
		src = NewSource(time.Now().UnixNano())
	}
	return &DataGenerator{src: src, state: initial.Clamped()}
}

// Next applica una perturbazione uniforme a ciascuna lettura e ritorna lo step.
func (g *DataGenerator) Next() Step {
	g.mu.Lock()
	defer g.mu.Unlock()

	delta := model.Telemetry{
		Temperature: symmetric(g.src, TemperatureStep),
		Humidity:    symmetric(g.src, HumidityStep),
	}
	before := g.state
	g.state = model.Telemetry{
		Temperature: before.Temperature + delta.Temperature,
		Humidity:    before.Humidity + delta.Humidity,
	}.Clamped()

	return Step{Before: before, Delta: delta, After: g.state}
}

// Current ritorna l'ultima lettura generata.
func (g *DataGenerator) Current() model.Telemetry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ===== Helpers =====

// symmetric maps a [0,1) sample onto [-amp, +amp).
func symmetric(src Source, amp float64) float64 {
	return (src.Float64() - 0.5) * 2 * amp
}
