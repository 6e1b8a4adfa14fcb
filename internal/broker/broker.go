// Package broker runs an embedded MQTT broker that mirrors the session log
// and the countdown state for home-automation clients.
package broker

import (
	"encoding/json"

	"switchbot_panel/internal/logger"
	"switchbot_panel/internal/models"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
)

const (
	DefaultTopicPrefix = "switchbot_panel"

	topicLog       = "/log"
	topicCountdown = "/countdown"
)

// Config for the embedded broker. An empty Address starts no TCP listener,
// leaving only inline publishing.
type Config struct {
	ID          string
	Address     string
	TopicPrefix string
}

// Broker publishes panel events. Log entries go out with QoS 0; the countdown
// state is retained so new subscribers see it immediately.
type Broker struct {
	server *mqtt.Server
	prefix string
	log    *logger.Logger
}

func New(cfg Config, log *logger.Logger) (*Broker, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ID == "" {
		cfg.ID = "panel"
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = DefaultTopicPrefix
	}

	server := mqtt.New(&mqtt.Options{InlineClient: true})
	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, err
	}
	if cfg.Address != "" {
		tcp := listeners.NewTCP(listeners.Config{ID: cfg.ID, Address: cfg.Address})
		if err := server.AddListener(tcp); err != nil {
			return nil, err
		}
	}
	return &Broker{server: server, prefix: cfg.TopicPrefix, log: log}, nil
}

// Start begins serving listeners in the background.
func (b *Broker) Start() error {
	if err := b.server.Serve(); err != nil {
		return err
	}
	b.log.Infow("mqtt_broker_started", "prefix", b.prefix)
	return nil
}

func (b *Broker) Close() error {
	return b.server.Close()
}

// LogTopic is where session log entries are published.
func (b *Broker) LogTopic() string { return b.prefix + topicLog }

// CountdownTopic is where countdown state changes are published.
func (b *Broker) CountdownTopic() string { return b.prefix + topicCountdown }

// PublishLog implements the session log sink.
func (b *Broker) PublishLog(e models.LogEntry) {
	b.publish(b.LogTopic(), e, false)
}

// PublishCountdown is registered as a countdown observer.
func (b *Broker) PublishCountdown(st models.CountdownState) {
	b.publish(b.CountdownTopic(), st, true)
}

func (b *Broker) publish(topic string, v any, retain bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.log.Errorw("mqtt_marshal_failed", "err", err, "topic", topic)
		return
	}
	if err := b.server.Publish(topic, payload, retain, 0); err != nil {
		b.log.Errorw("mqtt_publish_failed", "err", err, "topic", topic)
	}
}
