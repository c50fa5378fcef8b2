package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"thermostat/device"
	"thermostat/integration/mqtt"
	"thermostat/integration/ntfy"
	"thermostat/transform"
)

type Thermostat struct {
	// Control mode used to switch the thermostat, see transform.Mode
	Mode transform.Mode `yaml:"mode"`
}

type Config struct {
	MQTT mqtt.Config `yaml:"mqtt"`

	Zigbee struct {
		MQTTPrefix string `yaml:"prefix" envconfig:"ZIGBEE2MQTT_PREFIX"`
	} `yaml:"zigbee"`

	Enable struct {
		MQTTPrefix string `yaml:"prefix" envconfig:"ENABLE_PREFIX"`
	} `yaml:"enable"`

	// Switch all thermostats off when nobody is home, disabled when empty
	Presence struct {
		MQTTPrefix string `yaml:"prefix" envconfig:"PRESENCE_PREFIX"`
	} `yaml:"presence"`

	HTTP struct {
		Addr string `yaml:"addr" envconfig:"HTTP_ADDR"`
	} `yaml:"http"`

	Log struct {
		Level string `yaml:"level" envconfig:"LOG_LEVEL"`
	} `yaml:"log"`

	NTFY ntfy.Config `yaml:"ntfy"`

	Availability time.Duration `yaml:"availability" envconfig:"AVAILABILITY"`

	Thermostats map[device.InternalName]Thermostat `yaml:"thermostats" ignored:"true"`
}

func (c *Config) setDefaults() {
	if c.Zigbee.MQTTPrefix == "" {
		c.Zigbee.MQTTPrefix = "zigbee2mqtt"
	}
	if c.Enable.MQTTPrefix == "" {
		c.Enable.MQTTPrefix = "automation/thermostat"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Availability == 0 {
		c.Availability = 30 * time.Minute
	}
}

func (c *Config) validate() error {
	if len(c.Thermostats) == 0 {
		return errors.New("no thermostats configured")
	}

	for name, t := range c.Thermostats {
		mode, err := transform.ParseMode(string(t.Mode))
		if err != nil {
			return fmt.Errorf("thermostat %s: %w", name, err)
		}
		t.Mode = mode
		c.Thermostats[name] = t
	}

	if c.Availability < 0 {
		c.Availability = 0
	}

	return nil
}

// Get loads the config from the yaml file at path, values from the environment take precedence.
func Get(path string) (Config, error) {
	var cfg Config

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	// This can be used to either override the config or pass in secrets
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("parse environment config: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
