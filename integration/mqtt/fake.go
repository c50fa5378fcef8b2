package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Message is a publish recorded by FakeBroker.
type Message struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// FakeBroker is an in-memory Broker for tests.
// Retained messages are replayed on subscribe like a real broker.
type FakeBroker struct {
	mu            sync.Mutex
	subscriptions map[string]paho.MessageHandler
	retained      map[string]Message

	// Published contains every message passed to Publish.
	Published []Message

	// PublishError, if set, is returned by the token of every Publish.
	PublishError error
	// SubscribeError, if set, fails every Subscribe.
	SubscribeError error
}

var _ Broker = (*FakeBroker)(nil)

func NewFakeBroker() *FakeBroker {
	return &FakeBroker{
		subscriptions: make(map[string]paho.MessageHandler),
		retained:      make(map[string]Message),
	}
}

func toBytes(payload interface{}) []byte {
	switch p := payload.(type) {
	case []byte:
		return p
	case string:
		return []byte(p)
	default:
		return []byte(fmt.Sprint(p))
	}
}

func (f *FakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	msg := Message{Topic: topic, Payload: toBytes(payload), QoS: qos, Retained: retained}

	f.mu.Lock()
	if f.PublishError != nil {
		err := f.PublishError
		f.mu.Unlock()
		return &fakeToken{err: err}
	}
	f.Published = append(f.Published, msg)
	if retained {
		f.retained[topic] = msg
	}
	f.mu.Unlock()

	f.deliver(msg)

	return &fakeToken{}
}

func (f *FakeBroker) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	f.mu.Lock()
	if f.SubscribeError != nil {
		err := f.SubscribeError
		f.mu.Unlock()
		return &fakeToken{err: err}
	}
	f.subscriptions[topic] = callback
	var replay []Message
	for _, msg := range f.retained {
		if Match(topic, msg.Topic) {
			replay = append(replay, msg)
		}
	}
	f.mu.Unlock()

	for _, msg := range replay {
		callback(nil, &fakeMessage{msg: msg})
	}

	return &fakeToken{}
}

func (f *FakeBroker) Unsubscribe(topics ...string) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, topic := range topics {
		delete(f.subscriptions, topic)
	}

	return &fakeToken{}
}

// Deliver simulates a message arriving from the broker.
func (f *FakeBroker) Deliver(topic string, payload interface{}) {
	f.deliver(Message{Topic: topic, Payload: toBytes(payload)})
}

func (f *FakeBroker) deliver(msg Message) {
	f.mu.Lock()
	var handlers []paho.MessageHandler
	for filter, handler := range f.subscriptions {
		if Match(filter, msg.Topic) {
			handlers = append(handlers, handler)
		}
	}
	f.mu.Unlock()

	for _, handler := range handlers {
		handler(nil, &fakeMessage{msg: msg})
	}
}

// PublishedTo returns the messages published to topic, oldest first.
func (f *FakeBroker) PublishedTo(topic string) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	var msgs []Message
	for _, msg := range f.Published {
		if msg.Topic == topic {
			msgs = append(msgs, msg)
		}
	}

	return msgs
}

func (f *FakeBroker) Subscribed(topic string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.subscriptions[topic]
	return ok
}

// Match reports whether topic matches an MQTT subscription filter.
func Match(filter, topic string) bool {
	fs := strings.Split(filter, "/")
	ts := strings.Split(topic, "/")

	for i, f := range fs {
		if f == "#" {
			return true
		}
		if i >= len(ts) {
			return false
		}
		if f != "+" && f != ts[i] {
			return false
		}
	}

	return len(fs) == len(ts)
}

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeMessage struct {
	msg Message
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return m.msg.QoS }
func (m *fakeMessage) Retained() bool    { return m.msg.Retained }
func (m *fakeMessage) Topic() string     { return m.msg.Topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.msg.Payload }
func (m *fakeMessage) Ack()              {}
