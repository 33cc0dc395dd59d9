package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
	"github.com/tphakala/sherpa-go/internal/observability/metrics"
	"github.com/tphakala/sherpa-go/internal/sherpa"
)

// Client publishes messages to one broker.
type Client struct {
	config          Config
	newClient       func(*paho.ClientOptions) paho.Client
	internalClient  paho.Client
	lastConnAttempt time.Time
	mu              sync.Mutex
	metrics         metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records publish outcomes and latency.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// NewClient validates cfg and returns an unconnected client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.Broker)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return nil, errors.New(ErrInvalidBroker).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Context("broker", cfg.Broker).
			Build()
	}
	if cfg.QoS > 2 {
		return nil, errors.Newf("mqtt: qos must be 0, 1 or 2, got %d", cfg.QoS).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}

	c := &Client{
		config:    cfg,
		newClient: paho.NewClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect establishes the broker connection. The broker hostname is resolved
// first so DNS failures surface immediately instead of through paho retries.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if since := time.Since(c.lastConnAttempt); since < c.config.ReconnectCooldown {
		return fmt.Errorf("%w: last attempt was %v ago", ErrRecentConnect, since)
	}
	c.lastConnAttempt = time.Now()

	u, err := url.Parse(c.config.Broker)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBroker, err)
	}
	host := u.Hostname()
	if net.ParseIP(host) == nil {
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			c.recordError("connect", "dns")
			return errors.New(err).
				Component(componentName).
				Category(errors.CategoryNetwork).
				Context("broker", c.config.Broker).
				Build()
		}
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(c.config.ConnectTimeout)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.internalClient = c.newClient(opts)

	if err := waitToken(ctx, c.internalClient.Connect(), c.config.ConnectTimeout); err != nil {
		c.recordError("connect", errorType(err))
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryNetwork).
			Context("broker", c.config.Broker).
			Build()
	}
	c.record("connect", "success")
	return nil
}

// Publish sends payload to topic and waits for the broker acknowledgement.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnected() {
		c.recordError("publish", "not_connected")
		return c.publishError(ErrNotConnected, topic)
	}

	start := time.Now()
	token := c.internalClient.Publish(topic, c.config.QoS, c.config.Retain, payload)
	if err := waitToken(ctx, token, c.config.PublishTimeout); err != nil {
		c.recordError("publish", errorType(err))
		return c.publishError(err, topic)
	}
	if c.metrics != nil {
		c.metrics.RecordDuration("publish", time.Since(start).Seconds())
	}
	c.record("publish", "success")

	GetLogger().Debug("published message",
		logger.String("topic", topic),
		logger.Int("bytes", len(payload)))
	return nil
}

// PublishTags publishes tagging results for source to the configured topic.
func (c *Client) PublishTags(ctx context.Context, source string, events []sherpa.AudioEvent) error {
	if c.config.Topic == "" {
		return ErrNoDefaultTopic
	}
	payload, err := json.Marshal(NewTagMessage(source, events, time.Now()))
	if err != nil {
		return fmt.Errorf("mqtt: encode tag message: %w", err)
	}
	return c.Publish(ctx, c.config.Topic, payload)
}

// IsConnected reports whether the broker connection is up.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected()
}

func (c *Client) isConnected() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the broker connection. It is safe to call more than once.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient == nil {
		return
	}
	if c.internalClient.IsConnected() {
		c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
		c.record("disconnect", "success")
	}
	c.internalClient = nil
}

func (c *Client) onConnect(paho.Client) {
	GetLogger().Info("connected to MQTT broker", logger.String("broker", c.config.Broker))
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	GetLogger().Warn("connection to MQTT broker lost",
		logger.String("broker", c.config.Broker),
		logger.Error(err))
	c.recordError("connection", "lost")
}

func (c *Client) publishError(err error, topic string) error {
	return errors.New(err).
		Component(componentName).
		Category(errors.CategoryMQTTPublish).
		Context("topic", topic).
		Build()
}

func (c *Client) record(operation, status string) {
	if c.metrics != nil {
		c.metrics.RecordOperation(operation, status)
	}
}

func (c *Client) recordError(operation, errType string) {
	if c.metrics != nil {
		c.metrics.RecordOperation(operation, "error")
		c.metrics.RecordError(operation, errType)
	}
}

// waitToken blocks until token completes, ctx ends or timeout elapses.
func waitToken(ctx context.Context, token paho.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTimeout
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "broker"
	}
}
