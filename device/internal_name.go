package device

import "strings"

// InternalName is the zigbee2mqtt friendly name of a device, "room/name".
type InternalName string

func (n InternalName) split() (string, string) {
	room, name, found := strings.Cut(string(n), "/")
	if !found {
		return "", room
	}

	return room, name
}

func title(s string) string {
	return strings.Title(strings.ReplaceAll(s, "_", " "))
}

// Room is empty for names without a room part.
func (n InternalName) Room() string {
	room, _ := n.split()
	return title(room)
}

func (n InternalName) Name() string {
	_, name := n.split()
	return title(name)
}

func (n InternalName) String() string {
	return string(n)
}
