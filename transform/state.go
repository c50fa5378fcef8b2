package transform

import "strconv"

var offTemperature = mustParseFloat(OffSetpoint)

func mustParseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		panic(err)
	}

	return v
}

// State holds the fields of a zigbee2mqtt thermostat report used to derive the enable switch.
type State struct {
	CurrentHeatingSetpoint *float64
	SystemMode             *string
}

// Enabled derives the switch position from a device report.
// known is false when the report does not carry the field the mode depends on.
func Enabled(mode Mode, state State) (enabled bool, known bool) {
	switch mode {
	case ModeSetpoint:
		if state.CurrentHeatingSetpoint == nil {
			return false, false
		}
		return *state.CurrentHeatingSetpoint > offTemperature, true

	default:
		if state.SystemMode == nil {
			return false, false
		}
		return *state.SystemMode != "off", true
	}
}
