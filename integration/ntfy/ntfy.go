package ntfy

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"thermostat/integration/zigbee"
)

type Config struct {
	Server string `yaml:"server" envconfig:"NTFY_SERVER"`
	Topic  string `yaml:"topic" envconfig:"NTFY_TOPIC"`
}

type Notify struct {
	server string
	topic  string
	client *http.Client
}

func New(config Config) *Notify {
	server := config.Server
	if server == "" {
		server = "https://ntfy.sh"
	}

	return &Notify{server: strings.TrimSuffix(server, "/"), topic: config.Topic, client: http.DefaultClient}
}

func (n *Notify) Enabled() bool {
	return n.topic != ""
}

// Thermostat sends a notification for a changed enable state.
func (n *Notify) Thermostat(ctx context.Context, status zigbee.Status) error {
	if !n.Enabled() || status.Enabled == nil {
		return nil
	}

	description := fmt.Sprintf("%s in %s turned off", status.Label, status.Room)
	tags := "snowflake"
	if *status.Enabled {
		description = fmt.Sprintf("%s in %s turned on", status.Label, status.Room)
		tags = "fire"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s", n.server, n.topic), strings.NewReader(description))
	if err != nil {
		return err
	}

	req.Header.Set("Title", "Thermostat")
	req.Header.Set("Tags", tags)
	req.Header.Set("Priority", "1")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy: unexpected status %d", resp.StatusCode)
	}

	return nil
}
