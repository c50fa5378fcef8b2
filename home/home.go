package home

import (
	"errors"
	"fmt"
	"sync"

	"thermostat/device"
	"thermostat/logger"
)

var ErrNotFound = errors.New("device not found")

type Home struct {
	log *logger.Logger

	mu      sync.RWMutex
	devices map[device.InternalName]device.Basic
}

func New(log *logger.Logger) *Home {
	return &Home{log: log, devices: make(map[device.InternalName]device.Basic)}
}

func (h *Home) AddDevice(d device.Basic) {
	h.mu.Lock()
	h.devices[d.GetID()] = d
	h.mu.Unlock()

	h.log.Infof("Added %s in %s (%s)", d.GetID().Name(), d.GetID().Room(), d.GetID())
}

func (h *Home) RemoveDevice(name device.InternalName) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.devices, name)
}

func (h *Home) snapshot() map[device.InternalName]device.Basic {
	h.mu.RLock()
	defer h.mu.RUnlock()

	devices := make(map[device.InternalName]device.Basic, len(h.devices))
	for name, d := range h.devices {
		devices[name] = d
	}

	return devices
}

// Device looks up a device by name and asserts it implements K.
func Device[K any](h *Home, name device.InternalName) (K, error) {
	devices := h.snapshot()
	if _, ok := devices[name]; !ok {
		var noop K
		return noop, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return device.GetDevice[K](devices, name)
}

func Devices[K any](h *Home) map[device.InternalName]K {
	return device.GetDevices[K](h.snapshot())
}

// TurnAllOff switches every on/off device off and returns the first error.
func (h *Home) TurnAllOff() error {
	var first error
	for name, d := range Devices[device.OnOff](h) {
		if err := d.SetOnOff(false); err != nil {
			h.log.Warnf("Failed to turn off %s: %v", name, err)
			if first == nil {
				first = err
			}
		}
	}

	return first
}
