package transform

import "testing"

func ptr[T any](v T) *T {
	return &v
}

func TestOffTemperature(t *testing.T) {
	if offTemperature != 5 {
		t.Errorf("offTemperature = %v, want 5", offTemperature)
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		state     State
		wantOn    bool
		wantKnown bool
	}{
		{"setpoint missing", ModeSetpoint, State{SystemMode: ptr("heat")}, false, false},
		{"setpoint at off", ModeSetpoint, State{CurrentHeatingSetpoint: ptr(5.0)}, false, true},
		{"setpoint below off", ModeSetpoint, State{CurrentHeatingSetpoint: ptr(4.5)}, false, true},
		{"setpoint above off", ModeSetpoint, State{CurrentHeatingSetpoint: ptr(21.0)}, true, true},
		{"system missing", ModeSystemMode, State{CurrentHeatingSetpoint: ptr(21.0)}, false, false},
		{"system off", ModeSystemMode, State{SystemMode: ptr("off")}, false, true},
		{"system heat", ModeSystemMode, State{SystemMode: ptr("heat")}, true, true},
		{"system auto", ModeSystemMode, State{SystemMode: ptr("auto")}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			on, known := Enabled(tt.mode, tt.state)
			if on != tt.wantOn || known != tt.wantKnown {
				t.Errorf("Enabled() = (%t, %t), want (%t, %t)", on, known, tt.wantOn, tt.wantKnown)
			}
		})
	}
}
