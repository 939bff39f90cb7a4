package collector

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkaczor/gymflow/internal/analytics"
)

// Processor parses raw occupancy messages and stamps them into the gym's
// local calendar. All date/hour bucketing happens in the configured
// timezone; a reading scraped at 23:30 UTC must land on the right local day.
type Processor struct {
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewProcessor creates a message processor for the given gym timezone
func NewProcessor(logger *slog.Logger, loc *time.Location) *Processor {
	if loc == nil {
		loc = time.UTC
	}
	return &Processor{
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

// ReadingMessage is a parsed raw occupancy message with metadata
type ReadingMessage struct {
	EventID    string
	Location   string
	Occupancy  int
	ReceivedAt time.Time
}

// rawPayload is the scraper's wire format. Occupancy is the cumulative
// count of people currently inside; older scraper versions published the
// same number under "count".
type rawPayload struct {
	Occupancy *int   `json:"occupancy"`
	Count     *int   `json:"count"`
	Timestamp string `json:"timestamp"`
}

// ParseMessage parses a raw occupancy MQTT message.
// Topic pattern: gym/raw/occupancy/{location}
func (p *Processor) ParseMessage(topic string, payload []byte) (*ReadingMessage, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid topic format: %s (expected gym/raw/occupancy/{location})", topic)
	}
	location := parts[3]

	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON payload: %w", err)
	}

	occupancy := 0
	switch {
	case raw.Occupancy != nil:
		occupancy = *raw.Occupancy
	case raw.Count != nil:
		occupancy = *raw.Count
	default:
		return nil, fmt.Errorf("payload missing occupancy value")
	}
	if occupancy < 0 {
		return nil, fmt.Errorf("negative occupancy %d", occupancy)
	}

	receivedAt := p.now().In(p.loc)
	if raw.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err == nil {
			receivedAt = ts.In(p.loc)
		} else {
			p.logger.Warn("Ignoring unparseable timestamp", "timestamp", raw.Timestamp, "error", err)
		}
	}

	msg := &ReadingMessage{
		EventID:    uuid.NewString(),
		Location:   location,
		Occupancy:  occupancy,
		ReceivedAt: receivedAt,
	}

	p.logger.Debug("Parsed occupancy message",
		"event_id", msg.EventID,
		"location", location,
		"occupancy", occupancy)

	return msg, nil
}

// ToReading converts a parsed message into the persisted reading form,
// bucketed by local date and hour
func (p *Processor) ToReading(msg *ReadingMessage) analytics.Reading {
	t := msg.ReceivedAt
	return analytics.Reading{
		Date:      t.Format("2006-01-02"),
		Hour:      t.Hour(),
		Weekday:   (int(t.Weekday()) + 6) % 7, // 0=Monday
		Occupancy: msg.Occupancy,
		Timestamp: t,
	}
}

// BuildNotification creates the payload published after a reading is stored
func (p *Processor) BuildNotification(msg *ReadingMessage, r analytics.Reading) ([]byte, error) {
	payload := map[string]interface{}{
		"event_id":  msg.EventID,
		"location":  msg.Location,
		"date":      r.Date,
		"hour":      r.Hour,
		"weekday":   r.Weekday,
		"occupancy": r.Occupancy,
		"stored_at": r.Timestamp.Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification payload: %w", err)
	}
	return data, nil
}
