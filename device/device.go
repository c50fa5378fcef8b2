package device

import (
	"fmt"
)

type Basic interface {
	GetID() InternalName
}

type OnOff interface {
	SetOnOff(state bool) error
	// known is false until the device reported a state
	GetOnOff() (on bool, known bool)
}

func GetDevices[K any](devices map[InternalName]Basic) map[InternalName]K {
	devs := make(map[InternalName]K)

	for name, device := range devices {
		if dev, ok := device.(K); ok {
			devs[name] = dev
		}
	}

	return devs
}

func GetDevice[K any](devices map[InternalName]Basic, name InternalName) (K, error) {
	var noop K

	d, ok := devices[name]
	if !ok {
		return noop, fmt.Errorf("device '%s' does not exist", name)
	}

	dev, ok := d.(K)
	if !ok {
		return noop, fmt.Errorf("device '%s' is not the expected type", name)
	}

	return dev, nil
}
