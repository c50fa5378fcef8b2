package device

import "testing"

type fakeSwitch struct {
	id InternalName
	on bool
}

func (f *fakeSwitch) GetID() InternalName { return f.id }

func (f *fakeSwitch) SetOnOff(state bool) error {
	f.on = state
	return nil
}

func (f *fakeSwitch) GetOnOff() (bool, bool) { return f.on, true }

type fakeSensor struct {
	id InternalName
}

func (f *fakeSensor) GetID() InternalName { return f.id }

func TestInternalName(t *testing.T) {
	tests := []struct {
		in   InternalName
		room string
		name string
	}{
		{"living_room/radiator", "Living Room", "Radiator"},
		{"bedroom/trv_window", "Bedroom", "Trv Window"},
		{"hallway", "", "Hallway"},
	}

	for _, tt := range tests {
		if got := tt.in.Room(); got != tt.room {
			t.Errorf("%s.Room() = %q, want %q", tt.in, got, tt.room)
		}
		if got := tt.in.Name(); got != tt.name {
			t.Errorf("%s.Name() = %q, want %q", tt.in, got, tt.name)
		}
	}
}

func TestGetDevice(t *testing.T) {
	devices := map[InternalName]Basic{
		"bedroom/trv":    &fakeSwitch{id: "bedroom/trv"},
		"bedroom/sensor": &fakeSensor{id: "bedroom/sensor"},
	}

	sw, err := GetDevice[OnOff](devices, "bedroom/trv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sw.SetOnOff(true); err != nil {
		t.Fatal(err)
	}
	if on, _ := sw.GetOnOff(); !on {
		t.Error("expected switch to be on")
	}

	if _, err := GetDevice[OnOff](devices, "bedroom/sensor"); err == nil {
		t.Error("expected type error for sensor")
	}
	if _, err := GetDevice[OnOff](devices, "kitchen/trv"); err == nil {
		t.Error("expected error for missing device")
	}

	if got := len(GetDevices[OnOff](devices)); got != 1 {
		t.Errorf("GetDevices[OnOff] returned %d devices, want 1", got)
	}
	if got := len(GetDevices[Basic](devices)); got != 2 {
		t.Errorf("GetDevices[Basic] returned %d devices, want 2", got)
	}
}
