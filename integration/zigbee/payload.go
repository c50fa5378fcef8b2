package zigbee

import "thermostat/transform"

// ThermostatState is the part of a zigbee2mqtt TRV report the bridge tracks.
// Missing fields stay nil, devices only send what changed.
type ThermostatState struct {
	CurrentHeatingSetpoint *float64 `json:"current_heating_setpoint,omitempty"`
	SystemMode             *string  `json:"system_mode,omitempty"`
	LocalTemperature       *float64 `json:"local_temperature,omitempty"`
	Battery                *float64 `json:"battery,omitempty"`
	LinkQuality            *int     `json:"linkquality,omitempty"`
}

// Merge overlays the fields set in update.
func (s ThermostatState) Merge(update ThermostatState) ThermostatState {
	if update.CurrentHeatingSetpoint != nil {
		s.CurrentHeatingSetpoint = update.CurrentHeatingSetpoint
	}
	if update.SystemMode != nil {
		s.SystemMode = update.SystemMode
	}
	if update.LocalTemperature != nil {
		s.LocalTemperature = update.LocalTemperature
	}
	if update.Battery != nil {
		s.Battery = update.Battery
	}
	if update.LinkQuality != nil {
		s.LinkQuality = update.LinkQuality
	}

	return s
}

func (s ThermostatState) Transform() transform.State {
	return transform.State{
		CurrentHeatingSetpoint: s.CurrentHeatingSetpoint,
		SystemMode:             s.SystemMode,
	}
}

func OnOffString(on bool) string {
	if on {
		return "ON"
	}

	return "OFF"
}
