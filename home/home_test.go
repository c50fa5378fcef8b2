package home

import (
	"errors"
	"testing"

	"thermostat/device"
	"thermostat/logger"
)

type fakeSwitch struct {
	id  device.InternalName
	on  bool
	err error
}

func (f *fakeSwitch) GetID() device.InternalName { return f.id }

func (f *fakeSwitch) SetOnOff(state bool) error {
	if f.err != nil {
		return f.err
	}
	f.on = state
	return nil
}

func (f *fakeSwitch) GetOnOff() (bool, bool) { return f.on, true }

func TestDeviceLookup(t *testing.T) {
	h := New(logger.Nop())
	h.AddDevice(&fakeSwitch{id: "bedroom/trv"})

	if _, err := Device[device.OnOff](h, "bedroom/trv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := Device[device.OnOff](h, "kitchen/trv")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	h.RemoveDevice("bedroom/trv")
	if _, err := Device[device.OnOff](h, "bedroom/trv"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after removal, got %v", err)
	}
}

func TestTurnAllOff(t *testing.T) {
	h := New(logger.Nop())
	a := &fakeSwitch{id: "bedroom/trv", on: true}
	b := &fakeSwitch{id: "office/trv", on: true}
	broken := &fakeSwitch{id: "attic/trv", on: true, err: errors.New("offline")}
	h.AddDevice(a)
	h.AddDevice(b)
	h.AddDevice(broken)

	if err := h.TurnAllOff(); err == nil {
		t.Error("expected error from broken device")
	}
	if a.on || b.on {
		t.Errorf("expected all working devices off, got a=%t b=%t", a.on, b.on)
	}
	if len(Devices[device.OnOff](h)) != 3 {
		t.Error("expected three on/off devices")
	}
}
