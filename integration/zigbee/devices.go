package zigbee

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/kr/pretty"

	"thermostat/home"
	"thermostat/integration/mqtt"
	"thermostat/logger"
)

// DevicesHandler attaches the zigbee2mqtt device info to the configured devices.
func DevicesHandler(broker mqtt.Broker, prefix string, h *home.Home, log *logger.Logger) error {
	var handler paho.MessageHandler = func(_ paho.Client, msg paho.Message) {
		var devices []Info
		if err := json.Unmarshal(msg.Payload(), &devices); err != nil {
			log.Warnf("Invalid device list: %v", err)
			return
		}

		log.Debugf("zigbee2mqtt devices: %s", pretty.Sprint(devices))

		for _, info := range devices {
			d, err := home.Device[Device](h, info.FriendlyName)
			if err != nil {
				continue
			}

			d.SetInfo(info)
			log.Infof("Found %s (%s %s) for %s", info.IEEEAdress, info.Manufacturer, info.ModelID, info.FriendlyName)
		}
	}

	if err := mqtt.Wait(broker.Subscribe(fmt.Sprintf("%s/bridge/devices", prefix), 1, handler)); err != nil {
		return fmt.Errorf("subscribe device list: %w", err)
	}

	return nil
}
