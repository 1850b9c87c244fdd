package rabbitmq

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t fakeToken) Wait() bool { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient implements only Publish; any other call panics.
type fakeClient struct {
	mqtt.Client
	token fakeToken
	sent  []published
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return c.token
}

func TestPublishMessageEncodesJSON(t *testing.T) {
	c := &fakeClient{}
	p := NewPublisher(c, "greenhouse/telemetry", 1)

	require.NoError(t, p.PublishMessage(map[string]float64{"temperature": 24}))
	require.NoError(t, p.PublishMessage("raw"))

	require.Len(t, c.sent, 2)
	assert.Equal(t, "greenhouse/telemetry", c.sent[0].topic)
	assert.Equal(t, byte(1), c.sent[0].qos)
	assert.JSONEq(t, `{"temperature":24}`, string(c.sent[0].payload))
	assert.Equal(t, "raw", string(c.sent[1].payload))
}

func TestPublishMessageErrors(t *testing.T) {
	boom := errors.New("broker gone")
	p := NewPublisher(&fakeClient{token: fakeToken{err: boom}}, "t", 0)
	assert.ErrorIs(t, p.PublishMessage("x"), boom)

	p = NewPublisher(&fakeClient{token: fakeToken{timeout: true}}, "t", 0)
	assert.ErrorContains(t, p.PublishMessage("x"), "timed out")

	p = NewPublisher(&fakeClient{}, "t", 0)
	assert.Error(t, p.PublishMessage(func() {}))

	p = NewPublisher(nil, "t", 0)
	assert.Error(t, p.PublishMessage("x"))
}

func TestBrokerURL(t *testing.T) {
	cfg := &RabbitMQConfig{Host: "broker", Port: 1883}
	assert.Equal(t, "tcp://broker:1883", cfg.BrokerURL())
}
