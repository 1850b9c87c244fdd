package event

import (
	"strings"
	"sync"

	"github.com/LeonardoBeccarini/greenpower/pkg/rabbitmq"
)

// Mirror publishes every event's source payload to <prefix>/<topic>.
// It only writes; nothing it publishes is read back.
type Mirror struct {
	prefix  string
	factory func(topic string) rabbitmq.IPublisher

	mu   sync.Mutex
	pubs map[string]rabbitmq.IPublisher
}

// NewMirror builds one publisher per topic through factory, on first use.
func NewMirror(prefix string, factory func(topic string) rabbitmq.IPublisher) *Mirror {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = "greenhouse"
	}
	return &Mirror{prefix: prefix, factory: factory, pubs: make(map[string]rabbitmq.IPublisher)}
}

// TopicFor returns the full topic of a suffix.
func (m *Mirror) TopicFor(suffix string) string {
	return m.prefix + "/" + suffix
}

func (m *Mirror) Send(evt CommonEvent) error {
	return m.publisher(evt.Topic).PublishMessage(evt.Payload)
}

func (m *Mirror) publisher(suffix string) rabbitmq.IPublisher {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pubs[suffix]
	if !ok {
		p = m.factory(m.TopicFor(suffix))
		m.pubs[suffix] = p
	}
	return p
}

// Close closes every publisher.
func (m *Mirror) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pubs {
		p.Close()
	}
	m.pubs = make(map[string]rabbitmq.IPublisher)
}
