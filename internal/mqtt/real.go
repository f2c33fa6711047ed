package mqtt

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/rnse-control/canbridge/internal/frame"
)

// Client is a broker connection shared by a single process. Several
// processes attach to the same broker under distinct client IDs.
type Client struct {
	client paho.Client
	prefix string
}

// Connect dials the broker. name distinguishes the connecting process
// ("can-bridge", "key-control", ...); a random suffix keeps restarted or
// duplicate instances from stealing each other's session.
func Connect(broker, prefix, name string) (*Client, error) {
	if broker == "" {
		broker = DefaultBroker
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(name + "-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &Client{client: client, prefix: prefix}, nil
}

// PublishEvent sends a decoded event on its per-kind topic.
// QoS 0 (at-most-once), not retained.
func (c *Client) PublishEvent(env frame.Envelope) error {
	payload, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	token := c.client.Publish(EventTopic(c.prefix, env.Kind), 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishFrame queues a frame on the outbound topic for the bridge to
// write to the bus.
func (c *Client) PublishFrame(f frame.Frame) error {
	payload, err := frame.MarshalTX(f)
	if err != nil {
		return fmt.Errorf("marshal tx: %w", err)
	}

	token := c.client.Publish(TXTopic(c.prefix), 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish tx timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish tx: %w", err)
	}
	return nil
}

// SubscribeEvents subscribes to the given kinds and delivers envelopes
// on the returned channel. When the consumer falls behind the buffer,
// messages are dropped, consistent with at-most-once delivery.
func (c *Client) SubscribeEvents(kinds []frame.Kind, buffer int) (<-chan frame.Envelope, error) {
	ch := make(chan frame.Envelope, buffer)

	handler := func(_ paho.Client, msg paho.Message) {
		env, err := frame.UnmarshalEnvelope(msg.Payload())
		if err != nil {
			log.Printf("drop malformed event on %s: %v", msg.Topic(), err)
			return
		}
		select {
		case ch <- env:
		default:
			log.Printf("subscriber buffer full, dropping %s event", env.Kind)
		}
	}

	for _, kind := range kinds {
		token := c.client.Subscribe(EventTopic(c.prefix, kind), 0, handler)
		if !token.WaitTimeout(5 * time.Second) {
			return nil, fmt.Errorf("subscribe %s timeout", kind)
		}
		if err := token.Error(); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", kind, err)
		}
	}
	return ch, nil
}

// SubscribeTX delivers outbound frame requests on the returned channel.
func (c *Client) SubscribeTX(buffer int) (<-chan frame.Frame, error) {
	ch := make(chan frame.Frame, buffer)

	handler := func(_ paho.Client, msg paho.Message) {
		f, err := frame.UnmarshalTX(msg.Payload())
		if err != nil {
			log.Printf("drop malformed tx request: %v", err)
			return
		}
		select {
		case ch <- f:
		default:
			log.Printf("tx buffer full, dropping frame %v", f)
		}
	}

	token := c.client.Subscribe(TXTopic(c.prefix), 0, handler)
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("subscribe tx timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("subscribe tx: %w", err)
	}
	return ch, nil
}

// IsConnected reports the broker connection state.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
