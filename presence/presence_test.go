package presence

import (
	"testing"

	"github.com/kr/pretty"

	"thermostat/integration/mqtt"
	"thermostat/logger"
)

func TestPresence(t *testing.T) {
	broker := mqtt.NewFakeBroker()

	var changes []bool
	p := New("automation/presence", logger.Nop(), func(present bool) {
		changes = append(changes, present)
	})
	if err := p.Start(broker); err != nil {
		t.Fatal(err)
	}

	broker.Deliver("automation/presence/phone_a", `{"state":true,"updated":1}`)
	broker.Deliver("automation/presence/phone_b", `{"state":true,"updated":2}`)
	broker.Deliver("automation/presence/phone_a", `{"state":false,"updated":3}`)
	broker.Deliver("automation/presence/phone_b", "")
	broker.Deliver("automation/presence/phone_b", "broken")

	if diff := pretty.Diff(changes, []bool{true, false}); len(diff) > 0 {
		t.Errorf("presence changes differ: %v", diff)
	}
}
