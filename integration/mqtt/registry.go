package mqtt

import (
	"fmt"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type subscription struct {
	qos     byte
	handler paho.MessageHandler
}

// registry remembers the active subscriptions by filter.
type registry struct {
	mu   sync.Mutex
	subs map[string]subscription
}

func newRegistry() *registry {
	return &registry{subs: make(map[string]subscription)}
}

func (r *registry) add(topic string, qos byte, handler paho.MessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs[topic] = subscription{qos: qos, handler: handler}
}

func (r *registry) remove(topics ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, topic := range topics {
		delete(r.subs, topic)
	}
}

// restore subscribes every remembered filter on b again.
// It keeps going after a failure and returns the first error.
func (r *registry) restore(b Broker) (int, error) {
	r.mu.Lock()
	subs := make(map[string]subscription, len(r.subs))
	for topic, sub := range r.subs {
		subs[topic] = sub
	}
	r.mu.Unlock()

	var first error
	for topic, sub := range subs {
		if err := Wait(b.Subscribe(topic, sub.qos, sub.handler)); err != nil && first == nil {
			first = fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}

	return len(subs), first
}
