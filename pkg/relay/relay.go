// pkg/relay/relay.go
package relay

import (
	"context"
	"errors"
	"sync"
)

// Message is one document published out of a hook chain.
type Message struct {
	Topic   string
	Body    []byte
	Headers map[string]string
}

// Publisher is the minimal interface hook handlers need.
type Publisher interface {
	Publish(ctx context.Context, m Message) error
}

var ErrMissingTopic = errors.New("relay: missing topic")

// Noop accepts publishes and discards them.
type Noop struct{}

func (Noop) Publish(_ context.Context, m Message) error {
	if m.Topic == "" {
		return ErrMissingTopic
	}
	return nil
}

// Recorder keeps every published message in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Publish(_ context.Context, m Message) error {
	if m.Topic == "" {
		return ErrMissingTopic
	}
	body := append([]byte(nil), m.Body...)
	var hdrs map[string]string
	if len(m.Headers) > 0 {
		hdrs = make(map[string]string, len(m.Headers))
		for k, v := range m.Headers {
			hdrs[k] = v
		}
	}
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{Topic: m.Topic, Body: body, Headers: hdrs})
	r.mu.Unlock()
	return nil
}

// Messages returns a snapshot of what was published so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Topic returns the published messages for one topic, in order.
func (r *Recorder) Topic(topic string) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}
