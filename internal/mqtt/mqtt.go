// Package mqtt publishes audio tagging results to an MQTT broker.
package mqtt

import (
	"sync"
	"time"

	"github.com/tphakala/sherpa-go/internal/conf"
	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
)

const componentName = "mqtt"

// Errors returned by the client. Match them with errors.Is.
var (
	ErrNotConnected   = errors.NewStd("mqtt: not connected to broker")
	ErrTimeout        = errors.NewStd("mqtt: broker did not acknowledge in time")
	ErrInvalidBroker  = errors.NewStd("mqtt: invalid broker URL")
	ErrRecentConnect  = errors.NewStd("mqtt: connection attempt too recent")
	ErrNoDefaultTopic = errors.NewStd("mqtt: no topic configured")
)

// Config holds the configuration for the MQTT client.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string // default topic for tag events
	QoS      byte
	Retain   bool

	ReconnectCooldown time.Duration
	ConnectTimeout    time.Duration
	PublishTimeout    time.Duration
	DisconnectTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable default timeouts.
func DefaultConfig() Config {
	return Config{
		ClientID:          "sherpa-go",
		ReconnectCooldown: 5 * time.Second,
		ConnectTimeout:    30 * time.Second,
		PublishTimeout:    10 * time.Second,
		DisconnectTimeout: 250 * time.Millisecond,
	}
}

// ConfigFromSettings fills the broker settings into DefaultConfig.
func ConfigFromSettings(s *conf.MQTTSettings) Config {
	cfg := DefaultConfig()
	cfg.Broker = s.Broker
	cfg.Username = s.Username
	cfg.Password = s.Password
	cfg.Topic = s.Topic
	cfg.QoS = s.QoS
	cfg.Retain = s.Retain
	if s.ClientID != "" {
		cfg.ClientID = s.ClientID
	}
	return cfg
}

var (
	serviceLogger logger.Logger
	loggerOnce    sync.Once
)

// GetLogger returns the mqtt module logger.
func GetLogger() logger.Logger {
	loggerOnce.Do(func() {
		serviceLogger = logger.Global().Module("mqtt")
	})
	return serviceLogger
}
