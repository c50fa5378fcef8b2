// Package transform maps on/off switch input to zigbee2mqtt thermostat commands.
package transform

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Thermostat does not have built-in on/off modes on every model,
// the setpoint mode uses 5°C as the "off" position.
const OffSetpoint = "5"

var ErrUnknownMode = errors.New("unknown thermostat control mode")

type Mode string

const (
	ModeSetpoint   Mode = "5c"
	ModeSystemMode Mode = "system_mode"
)

// ParseMode validates a configured control mode, empty means system_mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeSystemMode:
		return ModeSystemMode, nil
	case ModeSetpoint:
		return ModeSetpoint, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Func turns the incoming switch value into the payload for the device set topic.
// An empty result means no command has to be sent.
type Func func(input any) string

type SetpointCommand struct {
	CurrentHeatingSetpoint string `json:"current_heating_setpoint"`
}

type SystemModeCommand struct {
	SystemMode string `json:"system_mode"`
}

var (
	setpointOff   = mustMarshal(SetpointCommand{CurrentHeatingSetpoint: OffSetpoint})
	systemModeOn  = mustMarshal(SystemModeCommand{SystemMode: "heat"})
	systemModeOff = mustMarshal(SystemModeCommand{SystemMode: "off"})
)

func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return string(b)
}

// IsOn reports whether input is one of the "on" literals.
// Only strings match, a numeric 1 is treated as off.
func IsOn(input any) bool {
	s, ok := input.(string)
	return ok && (s == "1" || s == "ON")
}

// SetpointToggle returns nothing for on and the 5°C setpoint command for anything else.
func SetpointToggle(input any) string {
	if IsOn(input) {
		return ""
	}

	return setpointOff
}

func SystemModeToggle(input any) string {
	if IsOn(input) {
		return systemModeOn
	}

	return systemModeOff
}

// Command returns the transform for mode, unknown modes fall back to system_mode.
func Command(mode Mode) Func {
	if mode == ModeSetpoint {
		return SetpointToggle
	}

	return SystemModeToggle
}
