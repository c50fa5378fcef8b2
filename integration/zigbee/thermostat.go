package zigbee

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/jellydator/ttlcache/v3"

	"thermostat/device"
	"thermostat/integration/mqtt"
	"thermostat/logger"
	"thermostat/transform"
)

type Options struct {
	// zigbee2mqtt base topic
	Prefix string
	// Base topic for the enable switch, state on <EnablePrefix>/<name>, commands on <EnablePrefix>/<name>/set
	EnablePrefix string
	// A device that has not reported for this long is offline, zero disables the timeout.
	Availability time.Duration
}

type Status struct {
	Name             device.InternalName `json:"name"`
	Room             string              `json:"room"`
	Label            string              `json:"label"`
	Mode             transform.Mode      `json:"mode"`
	Online           bool                `json:"online"`
	Enabled          *bool               `json:"enabled"`
	Setpoint         *float64            `json:"current_heating_setpoint,omitempty"`
	SystemMode       *string             `json:"system_mode,omitempty"`
	LocalTemperature *float64            `json:"local_temperature,omitempty"`
	Battery          *float64            `json:"battery,omitempty"`
	LinkQuality      *int                `json:"linkquality,omitempty"`
	Manufacturer     string              `json:"manufacturer,omitempty"`
	Model            string              `json:"model,omitempty"`
}

type Event struct {
	Status Status
	// The derived enable state differs from the previous report
	Changed bool
	// First known enable state since start or since the device went offline
	Initial bool
}

type Listener func(Event)

type Thermostat struct {
	name    device.InternalName
	mode    transform.Mode
	command transform.Func
	opts    Options

	broker mqtt.Broker
	log    *logger.Logger

	cache *ttlcache.Cache[device.InternalName, ThermostatState]

	// Serializes state reports, paho runs handlers concurrently
	reportMu sync.Mutex

	mu        sync.Mutex
	info      Info
	enabled   *bool
	listeners []Listener
}

func NewThermostat(name device.InternalName, mode transform.Mode, broker mqtt.Broker, opts Options, log *logger.Logger) *Thermostat {
	cacheOpts := []ttlcache.Option[device.InternalName, ThermostatState]{
		ttlcache.WithDisableTouchOnHit[device.InternalName, ThermostatState](),
	}
	if opts.Availability > 0 {
		cacheOpts = append(cacheOpts, ttlcache.WithTTL[device.InternalName, ThermostatState](opts.Availability))
	}

	t := &Thermostat{
		name:    name,
		mode:    mode,
		command: transform.Command(mode),
		opts:    opts,
		broker:  broker,
		log:     log.Named(name.String()),
		cache:   ttlcache.New(cacheOpts...),
	}

	t.cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[device.InternalName, ThermostatState]) {
		if reason != ttlcache.EvictionReasonExpired {
			return
		}

		t.log.Warnf("No report for %s, marking as offline", t.opts.Availability)
		t.mu.Lock()
		t.enabled = nil
		t.mu.Unlock()
		t.notify(Event{Status: t.status(nil)})
	})

	return t
}

func (t *Thermostat) stateTopic() string {
	return fmt.Sprintf("%s/%s", t.opts.Prefix, t.name)
}

func (t *Thermostat) setTopic() string {
	return fmt.Sprintf("%s/%s/set", t.opts.Prefix, t.name)
}

func (t *Thermostat) enableTopic() string {
	return fmt.Sprintf("%s/%s", t.opts.EnablePrefix, t.name)
}

func (t *Thermostat) enableSetTopic() string {
	return t.enableTopic() + "/set"
}

// Start subscribes to the device and enable switch topics.
func (t *Thermostat) Start() error {
	if err := mqtt.Wait(t.broker.Subscribe(t.stateTopic(), 1, t.stateHandler)); err != nil {
		return fmt.Errorf("subscribe %s: %w", t.stateTopic(), err)
	}
	if err := mqtt.Wait(t.broker.Subscribe(t.enableSetTopic(), 1, t.commandHandler)); err != nil {
		return fmt.Errorf("subscribe %s: %w", t.enableSetTopic(), err)
	}

	go t.cache.Start()

	return nil
}

func (t *Thermostat) Stop() {
	if err := mqtt.Wait(t.broker.Unsubscribe(t.stateTopic(), t.enableSetTopic())); err != nil {
		t.log.Warn(err)
	}

	t.cache.Stop()
}

// OnChange registers a listener that is called after every state report.
func (t *Thermostat) OnChange(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.listeners = append(t.listeners, l)
}

func (t *Thermostat) notify(e Event) {
	t.mu.Lock()
	listeners := make([]Listener, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	for _, l := range listeners {
		l(e)
	}
}

func (t *Thermostat) stateHandler(_ paho.Client, msg paho.Message) {
	if len(msg.Payload()) == 0 {
		return
	}

	var update ThermostatState
	if err := json.Unmarshal(msg.Payload(), &update); err != nil {
		t.log.Warnf("Invalid state payload: %v", err)
		return
	}

	t.reportMu.Lock()
	defer t.reportMu.Unlock()

	state := update
	if item := t.cache.Get(t.name); item != nil {
		state = item.Value().Merge(update)
	}
	t.cache.Set(t.name, state, ttlcache.DefaultTTL)

	on, known := transform.Enabled(t.mode, state.Transform())
	if !known {
		t.notify(Event{Status: t.status(&state)})
		return
	}

	t.mu.Lock()
	initial := t.enabled == nil
	changed := initial || *t.enabled != on
	t.enabled = &on
	t.mu.Unlock()

	if changed {
		t.log.Infof("Enable state is now %s", OnOffString(on))
		if err := mqtt.Wait(t.broker.Publish(t.enableTopic(), 1, true, OnOffString(on))); err != nil {
			t.log.Warnf("Failed to publish enable state: %v", err)
		}
	}

	t.notify(Event{Status: t.status(&state), Changed: changed, Initial: initial})
}

func (t *Thermostat) commandHandler(_ paho.Client, msg paho.Message) {
	if err := t.Command(string(msg.Payload())); err != nil {
		t.log.Warn(err)
	}
}

// Command runs the control mode transform on input and sends the result to the device.
func (t *Thermostat) Command(input any) error {
	payload := t.command(input)
	if payload == "" {
		t.log.Debugf("Nothing to send for %v", input)
		return nil
	}

	t.log.Debugf("Sending %s", payload)
	if err := mqtt.Wait(t.broker.Publish(t.setTopic(), 1, false, payload)); err != nil {
		return fmt.Errorf("publish %s: %w", t.setTopic(), err)
	}

	return nil
}

func (t *Thermostat) Status() Status {
	if item := t.cache.Get(t.name); item != nil {
		state := item.Value()
		return t.status(&state)
	}

	return t.status(nil)
}

// status must not touch the cache, it also runs from the eviction callback.
func (t *Thermostat) status(state *ThermostatState) Status {
	t.mu.Lock()
	info := t.info
	var enabled *bool
	if t.enabled != nil {
		on := *t.enabled
		enabled = &on
	}
	t.mu.Unlock()

	status := Status{
		Name:         t.name,
		Room:         t.name.Room(),
		Label:        t.name.Name(),
		Mode:         t.mode,
		Enabled:      enabled,
		Manufacturer: info.Manufacturer,
		Model:        info.ModelID,
	}

	if state != nil {
		status.Online = true
		status.Setpoint = state.CurrentHeatingSetpoint
		status.SystemMode = state.SystemMode
		status.LocalTemperature = state.LocalTemperature
		status.Battery = state.Battery
		status.LinkQuality = state.LinkQuality
	}

	return status
}

func (t *Thermostat) Mode() transform.Mode {
	return t.mode
}

// zigbee.Device
var _ Device = (*Thermostat)(nil)

func (t *Thermostat) IsZigbeeDevice() {}

func (t *Thermostat) SetInfo(info Info) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.info = info
}

// device.Basic
var _ device.Basic = (*Thermostat)(nil)

func (t *Thermostat) GetID() device.InternalName {
	return t.name
}

// device.OnOff
var _ device.OnOff = (*Thermostat)(nil)

func (t *Thermostat) SetOnOff(state bool) error {
	return t.Command(OnOffString(state))
}

func (t *Thermostat) GetOnOff() (bool, bool) {
	item := t.cache.Get(t.name)
	if item == nil {
		return false, false
	}

	return transform.Enabled(t.mode, item.Value().Transform())
}
