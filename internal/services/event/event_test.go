package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
	"github.com/LeonardoBeccarini/greenpower/pkg/rabbitmq"
)

var at = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func tags(p *write.Point) map[string]string {
	out := map[string]string{}
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func fields(p *write.Point) map[string]interface{} {
	out := map[string]interface{}{}
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestTelemetryPoint(t *testing.T) {
	evt := FromTelemetry(model.TelemetryEvent{User: "admin", Temperature: 24.5, Humidity: 61, Timestamp: at})
	p := EventToPoint(evt)

	assert.Equal(t, MeasurementTelemetry, p.Name())
	assert.Equal(t, at, p.Time())
	assert.Equal(t, map[string]string{"event_type": "telemetry", "severity": "info", "user": "admin"}, tags(p))
	f := fields(p)
	assert.Equal(t, 24.5, f["temperature"])
	assert.Equal(t, 61.0, f["humidity"])
	assert.Equal(t, int64(1), f["count"])
}

func TestNotificationAndActuatorPoints(t *testing.T) {
	p := EventToPoint(FromNotification(model.NotificationEvent{
		User: "admin", ID: "n-1", Kind: "irrigation.completed", Level: "success",
		Message: "Irrigation completed successfully", Timestamp: at,
	}))
	assert.Equal(t, MeasurementEvent, p.Name())
	assert.Equal(t, "irrigation.completed", tags(p)["event_type"])
	assert.Equal(t, "success", tags(p)["severity"])
	assert.Equal(t, "Irrigation completed successfully", fields(p)["message"])

	last := at.Add(-time.Hour)
	evt := FromActuators(model.ActuatorEvent{User: "admin", LightsOn: true, LastIrrigation: &last, Timestamp: at})
	assert.Equal(t, TopicActuators, evt.Topic)
	f := fields(EventToPoint(evt))
	assert.Equal(t, true, f["lights_on"])
	assert.Equal(t, false, f["irrigating"])
	assert.Equal(t, last.Unix(), f["last_irrigation_unix"])
}

type fakeSink struct {
	mu   sync.Mutex
	err  error
	sent []CommonEvent
}

func (s *fakeSink) Send(evt CommonEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, evt)
	return s.err
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestObserverDeliversInOrder(t *testing.T) {
	sink := &fakeSink{}
	o := NewObserver("test", sink, ObserverConfig{})

	o.TelemetryUpdated(model.TelemetryEvent{User: "admin"})
	o.NotificationAdded(model.NotificationEvent{User: "admin", Kind: "lights"})
	o.ActuatorsChanged(model.ActuatorEvent{User: "admin"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o.Run(ctx)

	require.Equal(t, 3, sink.count())
	assert.Equal(t, []string{TopicTelemetry, TopicNotifications, TopicActuators},
		[]string{sink.sent[0].Topic, sink.sent[1].Topic, sink.sent[2].Topic})
	assert.Equal(t, int64(3), o.Delivered())
}

func TestObserverDropsWhenQueueFull(t *testing.T) {
	o := NewObserver("test", &fakeSink{}, ObserverConfig{QueueSize: 1})
	o.TelemetryUpdated(model.TelemetryEvent{})
	o.TelemetryUpdated(model.TelemetryEvent{})
	assert.Equal(t, int64(1), o.Dropped())
}

func TestObserverBreakerOpens(t *testing.T) {
	sink := &fakeSink{err: errors.New("broker down")}
	o := NewObserver("test", sink, ObserverConfig{Breaker: BreakerConfig{Failures: 2, OpenFor: time.Hour}})

	for i := 0; i < 5; i++ {
		o.TelemetryUpdated(model.TelemetryEvent{})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o.Run(ctx)

	assert.Equal(t, 2, sink.count())
	assert.Equal(t, int64(3), o.Rejected())
	assert.Equal(t, gobreaker.StateOpen, o.State())
}

func TestObserverRunStopsOnCancel(t *testing.T) {
	sink := &fakeSink{}
	o := NewObserver("test", sink, ObserverConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()

	o.TelemetryUpdated(model.TelemetryEvent{})
	assert.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

type fakePublisher struct {
	topic string
	got   []interface{}
	err   error
}

func (p *fakePublisher) PublishMessage(m interface{}) error {
	p.got = append(p.got, m)
	return p.err
}

func (p *fakePublisher) Close() {}

func TestMirrorPublishesPayloadPerTopic(t *testing.T) {
	pubs := map[string]*fakePublisher{}
	m := NewMirror("/farm/", func(topic string) rabbitmq.IPublisher {
		p := &fakePublisher{topic: topic}
		pubs[topic] = p
		return p
	})

	tel := model.TelemetryEvent{User: "admin", Temperature: 20}
	require.NoError(t, m.Send(FromTelemetry(tel)))
	require.NoError(t, m.Send(FromTelemetry(tel)))
	require.NoError(t, m.Send(FromNotification(model.NotificationEvent{Message: "Lights on"})))

	require.Len(t, pubs, 2)
	assert.Equal(t, []interface{}{tel, tel}, pubs["farm/telemetry"].got)
	assert.Len(t, pubs["farm/notifications"].got, 1)
	assert.Equal(t, "greenhouse/actuators", NewMirror("", nil).TopicFor(TopicActuators))
}

type fakeWriteAPI struct {
	api.WriteAPI
	mu     sync.Mutex
	points []*write.Point
	errs   chan error
}

func (f *fakeWriteAPI) WritePoint(p *write.Point) {
	f.mu.Lock()
	f.points = append(f.points, p)
	f.mu.Unlock()
}

func (f *fakeWriteAPI) Flush() {}
func (f *fakeWriteAPI) Errors() <-chan error { return f.errs }

func TestWriterSendAndErrorAge(t *testing.T) {
	wapi := &fakeWriteAPI{errs: make(chan error, 1)}
	w := NewWriter(wapi, nil)

	require.NoError(t, w.Send(FromTelemetry(model.TelemetryEvent{Timestamp: at})))
	assert.Equal(t, int64(1), w.Count(MeasurementTelemetry))
	assert.Len(t, wapi.points, 1)
	assert.Greater(t, w.LastErrorAge(), time.Hour)

	wapi.errs <- errors.New("bucket not found")
	assert.Eventually(t, func() bool { return w.LastErrorAge() < time.Minute }, time.Second, 5*time.Millisecond)

	var none *Writer
	assert.Zero(t, none.Count(MeasurementTelemetry))
}
