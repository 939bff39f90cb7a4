package collector

import (
	"context"
	"strings"
	"testing"

	"github.com/mkaczor/gymflow/internal/analytics"
	"github.com/mkaczor/gymflow/pkg/config"
	"github.com/mkaczor/gymflow/pkg/mqtt"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }
func (m *fakeMessage) Ack()            {}

type fakeMQTT struct {
	published map[string][]byte
}

func (f *fakeMQTT) Connect(_ context.Context) error                  { return nil }
func (f *fakeMQTT) Disconnect()                                      {}
func (f *fakeMQTT) Subscribe(string, byte, mqtt.MessageHandler) error { return nil }
func (f *fakeMQTT) IsConnected() bool                                { return true }

func (f *fakeMQTT) Publish(topic string, _ byte, _ bool, payload []byte) error {
	if f.published == nil {
		f.published = make(map[string][]byte)
	}
	f.published[topic] = payload
	return nil
}

type fakeWriter struct {
	stored []analytics.Reading
}

func (f *fakeWriter) Upsert(_ context.Context, r analytics.Reading) error {
	f.stored = append(f.stored, r)
	return nil
}

func newTestAgent(t *testing.T, writer ReadingWriter, broker *fakeMQTT) *Agent {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Timezone = "UTC"
	return NewAgent(broker, writer, cfg, testLogger())
}

func TestHandleMessageStoresAndNotifies(t *testing.T) {
	broker := &fakeMQTT{}
	writer := &fakeWriter{}
	agent := newTestAgent(t, writer, broker)

	// Thursday 17:00 UTC: inside weekday operating hours
	agent.handleMessage(&fakeMessage{
		topic:   "gym/raw/occupancy/downtown",
		payload: []byte(`{"occupancy":42,"timestamp":"2026-01-15T17:05:00Z"}`),
	})

	if len(writer.stored) != 1 {
		t.Fatalf("stored %d readings, want 1", len(writer.stored))
	}
	r := writer.stored[0]
	if r.Date != "2026-01-15" || r.Hour != 17 || r.Occupancy != 42 {
		t.Errorf("stored reading = %+v", r)
	}

	payload, ok := broker.published["gym/reading/downtown"]
	if !ok {
		t.Fatal("expected a stored-reading notification")
	}
	if !strings.Contains(string(payload), `"occupancy":42`) {
		t.Errorf("notification payload = %s", payload)
	}
}

func TestHandleMessageDropsClosedHours(t *testing.T) {
	broker := &fakeMQTT{}
	writer := &fakeWriter{}
	agent := newTestAgent(t, writer, broker)

	// Thursday 03:00: the gym is closed
	agent.handleMessage(&fakeMessage{
		topic:   "gym/raw/occupancy/downtown",
		payload: []byte(`{"occupancy":5,"timestamp":"2026-01-15T03:00:00Z"}`),
	})

	if len(writer.stored) != 0 {
		t.Errorf("closed-hour reading was stored: %+v", writer.stored)
	}
	if len(broker.published) != 0 {
		t.Error("closed-hour reading triggered a notification")
	}
}

func TestHandleMessageDropsWeekendOffHours(t *testing.T) {
	broker := &fakeMQTT{}
	writer := &fakeWriter{}
	agent := newTestAgent(t, writer, broker)

	// Saturday 07:00: before weekend opening
	agent.handleMessage(&fakeMessage{
		topic:   "gym/raw/occupancy/downtown",
		payload: []byte(`{"occupancy":5,"timestamp":"2026-01-17T07:00:00Z"}`),
	})
	if len(writer.stored) != 0 {
		t.Errorf("pre-opening weekend reading was stored: %+v", writer.stored)
	}

	// Saturday 10:00: open
	agent.handleMessage(&fakeMessage{
		topic:   "gym/raw/occupancy/downtown",
		payload: []byte(`{"occupancy":20,"timestamp":"2026-01-17T10:00:00Z"}`),
	})
	if len(writer.stored) != 1 {
		t.Fatalf("open weekend reading not stored")
	}
	if writer.stored[0].Weekday != 5 {
		t.Errorf("weekday = %d, want 5 (saturday)", writer.stored[0].Weekday)
	}
}

func TestHandleMessageIgnoresMalformed(t *testing.T) {
	broker := &fakeMQTT{}
	writer := &fakeWriter{}
	agent := newTestAgent(t, writer, broker)

	agent.handleMessage(&fakeMessage{
		topic:   "gym/raw/occupancy/downtown",
		payload: []byte(`not json`),
	})

	if len(writer.stored) != 0 || len(broker.published) != 0 {
		t.Error("malformed message should be dropped without side effects")
	}
}
