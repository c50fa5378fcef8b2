package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"thermostat/logger"
)

const connectTimeout = 10 * time.Second

var ErrConnectTimeout = errors.New("mqtt connect timeout")

// Broker is the part of paho.Client the bridge uses.
type Broker interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

var _ Broker = (paho.Client)(nil)

// Client is a paho client that restores its subscriptions after every reconnect.
// The session is clean, so the broker forgets them when the connection drops.
type Client struct {
	paho.Client

	subs *registry
}

var _ Broker = (*Client)(nil)

func (c *Client) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	c.subs.add(topic, qos, callback)
	return c.Client.Subscribe(topic, qos, callback)
}

func (c *Client) Unsubscribe(topics ...string) paho.Token {
	c.subs.remove(topics...)
	return c.Client.Unsubscribe(topics...)
}

func clientID(config Config) string {
	if config.ClientID != "" {
		return config.ClientID
	}

	return "thermostat-" + uuid.NewString()[:8]
}

func New(config Config, log *logger.Logger) (*Client, error) {
	c := &Client{subs: newRegistry()}

	opts := paho.NewClientOptions().AddBroker(config.Broker())
	opts.SetClientID(clientID(config))
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetDefaultPublishHandler(func(_ paho.Client, msg paho.Message) {
		log.Debugf("Unhandled message on %s: %s", msg.Topic(), msg.Payload())
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warnf("MQTT connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(client paho.Client) {
		log.Infof("Connected to %s", config.Broker())
		if n, err := c.subs.restore(client); err != nil {
			log.Warnf("Failed to restore subscriptions: %v", err)
		} else if n > 0 {
			log.Infof("Restored %d subscriptions", n)
		}
	})

	c.Client = paho.NewClient(opts)
	if err := connect(c.Client, connectTimeout); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", config.Broker(), err)
	}

	return c, nil
}

// connect waits for the first connection. On failure the client is disconnected
// so it stops retrying in the background.
func connect(client paho.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return err
	}

	return nil
}

// Wait blocks on a token and returns its error.
func Wait(token paho.Token) error {
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}

	return nil
}
