package main

import (
	"testing"

	"github.com/kr/pretty"

	"thermostat/device"
	"thermostat/home"
	"thermostat/integration/mqtt"
	"thermostat/integration/zigbee"
	"thermostat/logger"
	"thermostat/presence"
	"thermostat/transform"
)

func TestAwayTurnsThermostatsOff(t *testing.T) {
	broker := mqtt.NewFakeBroker()
	log := logger.Nop()
	h := home.New(log)

	opts := zigbee.Options{Prefix: "zigbee2mqtt", EnablePrefix: "automation/thermostat"}
	modes := map[string]transform.Mode{
		"bedroom/trv": transform.ModeSetpoint,
		"office/trv":  transform.ModeSystemMode,
	}
	for name, mode := range modes {
		th := zigbee.NewThermostat(device.InternalName(name), mode, broker, opts, log)
		if err := th.Start(); err != nil {
			t.Fatal(err)
		}
		defer th.Stop()
		h.AddDevice(th)
	}

	p := presence.New("automation/presence", log, awayHandler(h, log))
	if err := p.Start(broker); err != nil {
		t.Fatal(err)
	}

	broker.Deliver("automation/presence/phone", `{"state":true,"updated":1700000000000}`)
	for name := range modes {
		if msgs := broker.PublishedTo("zigbee2mqtt/" + name + "/set"); len(msgs) != 0 {
			t.Errorf("%s: commands sent while home: %v", name, msgs)
		}
	}

	broker.Deliver("automation/presence/phone", `{"state":false,"updated":1700000060000}`)

	want := map[string][]string{
		"bedroom/trv": {`{"current_heating_setpoint":"5"}`},
		"office/trv":  {`{"system_mode":"off"}`},
	}
	got := map[string][]string{}
	for name := range modes {
		for _, msg := range broker.PublishedTo("zigbee2mqtt/" + name + "/set") {
			got[name] = append(got[name], string(msg.Payload))
		}
	}
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Errorf("away commands differ: %v", diff)
	}
}
