package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkaczor/gymflow/internal/analytics"
	"github.com/mkaczor/gymflow/internal/schedule"
	"github.com/mkaczor/gymflow/pkg/config"
	"github.com/mkaczor/gymflow/pkg/mqtt"
)

// ReadingWriter persists one reading; writes to the same (date, hour) slot
// replace the previous value
type ReadingWriter interface {
	Upsert(ctx context.Context, r analytics.Reading) error
}

// Agent is the collector: it subscribes to raw occupancy topics, gates
// readings against the gym schedule, persists them, and notifies
// downstream consumers.
type Agent struct {
	mqtt      mqtt.Client
	store     ReadingWriter
	processor *Processor
	sched     schedule.Schedule
	cfg       *config.Config
	logger    *slog.Logger
}

// NewAgent creates a collector agent with the given dependencies
func NewAgent(mqttClient mqtt.Client, store ReadingWriter, cfg *config.Config, logger *slog.Logger) *Agent {
	return &Agent{
		mqtt:      mqttClient,
		store:     store,
		processor: NewProcessor(logger, cfg.Location()),
		sched:     schedule.FromConfig(cfg),
		cfg:       cfg,
		logger:    logger,
	}
}

// Start connects to the broker and begins processing raw occupancy messages
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting collector agent",
		"service_name", a.cfg.ServiceName,
		"mqtt_broker", a.cfg.MQTTAddress())

	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	for _, topic := range a.cfg.ReadingTopics {
		if err := a.mqtt.Subscribe(topic, 0, a.handleMessage); err != nil {
			a.logger.Error("Failed to subscribe to topic", "topic", topic, "error", err)
			// Continue subscribing to other topics even if one fails
			continue
		}
	}

	a.logger.Info("Collector agent started and ready to receive messages",
		"subscribed_topics", strings.Join(a.cfg.ReadingTopics, ", "))

	// Block until context is cancelled
	<-ctx.Done()
	a.logger.Info("Collector agent stopping")

	return nil
}

// Stop gracefully stops the collector agent
func (a *Agent) Stop() error {
	a.logger.Info("Stopping collector agent")
	a.mqtt.Disconnect()
	a.logger.Info("Collector agent stopped")
	return nil
}

// handleMessage processes one incoming raw occupancy message
func (a *Agent) handleMessage(msg mqtt.Message) {
	topic := msg.Topic()
	payload := msg.Payload()

	a.logger.Debug("Received MQTT message", "topic", topic, "size", len(payload))

	parsed, err := a.processor.ParseMessage(topic, payload)
	if err != nil {
		a.logger.Error("Failed to parse message", "topic", topic, "error", err)
		return
	}

	reading := a.processor.ToReading(parsed)

	// Readings outside operating hours carry no signal worth persisting
	if !a.sched.IsOpen(reading.Weekday, reading.Hour) {
		a.logger.Debug("Dropping closed-hour reading",
			"event_id", parsed.EventID,
			"date", reading.Date,
			"hour", reading.Hour)
		return
	}

	ctx := context.Background()
	if err := a.store.Upsert(ctx, reading); err != nil {
		a.logger.Error("Failed to store reading",
			"event_id", parsed.EventID,
			"date", reading.Date,
			"hour", reading.Hour,
			"error", err)
		return
	}

	if err := a.publishNotification(parsed, reading); err != nil {
		a.logger.Error("Failed to publish stored-reading notification",
			"event_id", parsed.EventID,
			"location", parsed.Location,
			"error", err)
	}

	a.logger.Info("Occupancy reading stored",
		"event_id", parsed.EventID,
		"location", parsed.Location,
		"date", reading.Date,
		"hour", reading.Hour,
		"occupancy", reading.Occupancy)
}

// publishNotification tells downstream consumers a reading was persisted.
// Converts gym/raw/occupancy/{location} -> gym/reading/{location}.
func (a *Agent) publishNotification(msg *ReadingMessage, r analytics.Reading) error {
	payload, err := a.processor.BuildNotification(msg, r)
	if err != nil {
		return err
	}

	topic := mqtt.StoredReadingTopic(msg.Location)
	if err := a.mqtt.Publish(topic, 0, false, payload); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	a.logger.Debug("Published notification", "topic", topic)
	return nil
}
