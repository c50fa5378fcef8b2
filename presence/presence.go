// Package presence tracks who is home and switches the heating off when the house is empty.
package presence

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"thermostat/integration/mqtt"
	"thermostat/logger"
)

type Message struct {
	State   bool  `json:"state"`
	Updated int64 `json:"updated"`
}

type Presence struct {
	prefix string
	log    *logger.Logger
	// Called when the overall presence changes
	onChange func(present bool)

	mu      sync.Mutex
	devices map[string]bool
	current *bool
}

func New(prefix string, log *logger.Logger, onChange func(present bool)) *Presence {
	return &Presence{prefix: prefix, log: log, onChange: onChange, devices: make(map[string]bool)}
}

func (p *Presence) Start(broker mqtt.Broker) error {
	topic := p.prefix + "/+"
	if err := mqtt.Wait(broker.Subscribe(topic, 1, p.handler)); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	return nil
}

// Handler for <prefix>/+, an empty payload removes the device
func (p *Presence) handler(_ paho.Client, msg paho.Message) {
	name := strings.TrimPrefix(msg.Topic(), p.prefix+"/")

	p.mu.Lock()
	if len(msg.Payload()) == 0 {
		delete(p.devices, name)
	} else {
		var message Message
		if err := json.Unmarshal(msg.Payload(), &message); err != nil {
			p.mu.Unlock()
			p.log.Warnf("Invalid presence message for %s: %v", name, err)
			return
		}

		p.devices[name] = message.State
	}

	present := false
	for _, value := range p.devices {
		if value {
			present = true
			break
		}
	}

	changed := p.current == nil || *p.current != present
	p.current = &present
	p.mu.Unlock()

	if changed {
		p.log.Infof("Presence: %t", present)
		if p.onChange != nil {
			p.onChange(present)
		}
	}
}
