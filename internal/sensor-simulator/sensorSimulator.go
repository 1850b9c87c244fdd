package sensor_simulator

import (
	"sync"
	"time"

	"github.com/LeonardoBeccarini/greenpower/pkg/schedule"
)

// SensorSimulator lega un DataGenerator al ciclo di vita di una dashboard:
// il tick periodico è registrato sul Group e muore con esso.
type SensorSimulator struct {
	mu        sync.Mutex
	generator *DataGenerator
	task      *schedule.Task // single ticker
	onTick    func(Step)
}

func NewSensorSimulator(gen *DataGenerator, onTick func(Step)) *SensorSimulator {
	return &SensorSimulator{generator: gen, onTick: onTick}
}

// Start registra il tick periodico sul gruppo. Chiamate ripetute sostituiscono il tick precedente.
func (s *SensorSimulator) Start(g *schedule.Group, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task != nil {
		s.task.Stop()
	}
	s.task = g.Every(interval, s.tick)
}

// Stop ferma il tick. Il Group lo ferma comunque allo smontaggio.
func (s *SensorSimulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.Stop()
	s.task = nil
}

func (s *SensorSimulator) tick() {
	step := s.generator.Next()
	if s.onTick != nil {
		s.onTick(step)
	}
}

// Generator espone il generatore sottostante.
func (s *SensorSimulator) Generator() *DataGenerator { return s.generator }
