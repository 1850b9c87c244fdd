package event

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
)

// Sink delivers one normalised event somewhere outside the process.
type Sink interface {
	Send(CommonEvent) error
}

type BreakerConfig struct {
	Failures int           // consecutive failures that open the breaker
	OpenFor  time.Duration // how long it stays open before a probe
	Interval time.Duration // closed-state counter reset; 0 never resets
}

// NewBreaker builds a breaker that trips after cfg.Failures consecutive errors.
func NewBreaker(name string, cfg BreakerConfig, log *zap.SugaredLogger) *gobreaker.CircuitBreaker {
	if cfg.Failures < 1 {
		cfg.Failures = 1
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	fails := uint32(cfg.Failures)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: cfg.Interval,
		Timeout:  cfg.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= fails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Infow("event: breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

type ObserverConfig struct {
	Breaker   BreakerConfig
	QueueSize int
	Logger    *zap.SugaredLogger
}

// Observer mirrors dashboard changes into a Sink. Events are queued and
// delivered by Run so the dashboard never waits on the network; a full queue
// drops the event.
type Observer struct {
	name  string
	sink  Sink
	cb    *gobreaker.CircuitBreaker
	log   *zap.SugaredLogger
	queue chan CommonEvent

	delivered atomic.Int64
	dropped   atomic.Int64
	rejected  atomic.Int64
}

func NewObserver(name string, sink Sink, cfg ObserverConfig) *Observer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	log := cfg.Logger.With("sink", name)
	return &Observer{
		name:  name,
		sink:  sink,
		cb:    NewBreaker(name, cfg.Breaker, log),
		log:   log,
		queue: make(chan CommonEvent, cfg.QueueSize),
	}
}

func (o *Observer) TelemetryUpdated(e model.TelemetryEvent) { o.enqueue(FromTelemetry(e)) }
func (o *Observer) NotificationAdded(e model.NotificationEvent) { o.enqueue(FromNotification(e)) }
func (o *Observer) ActuatorsChanged(e model.ActuatorEvent) { o.enqueue(FromActuators(e)) }

func (o *Observer) enqueue(evt CommonEvent) {
	select {
	case o.queue <- evt:
	default:
		o.dropped.Add(1)
		o.log.Debugw("event: queue full, event dropped", "topic", evt.Topic)
	}
}

// Run delivers queued events until ctx is done, then drains what is left.
func (o *Observer) Run(ctx context.Context) {
	o.log.Infow("event: observer started")
	for {
		select {
		case evt := <-o.queue:
			o.deliver(evt)
		case <-ctx.Done():
			for {
				select {
				case evt := <-o.queue:
					o.deliver(evt)
				default:
					o.log.Infow("event: observer stopped",
						"delivered", o.delivered.Load(), "dropped", o.dropped.Load(), "rejected", o.rejected.Load())
					return
				}
			}
		}
	}
}

func (o *Observer) deliver(evt CommonEvent) {
	_, err := o.cb.Execute(func() (interface{}, error) {
		return nil, o.sink.Send(evt)
	})
	switch {
	case err == nil:
		o.delivered.Add(1)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		o.rejected.Add(1)
	default:
		o.log.Warnw("event: delivery failed", "topic", evt.Topic, "error", err)
	}
}

func (o *Observer) Name() string { return o.name }

// State reports the breaker state.
func (o *Observer) State() gobreaker.State { return o.cb.State() }

func (o *Observer) Delivered() int64 { return o.delivered.Load() }
func (o *Observer) Dropped() int64 { return o.dropped.Load() }
func (o *Observer) Rejected() int64 { return o.rejected.Load() }
