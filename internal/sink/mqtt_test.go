package sink

import (
	"encoding/json"
	"errors"
	"testing"
)

type mockPublisher struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
	err      error
	calls    int
}

func (m *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.calls++
	m.topic = topic
	m.payload = payload
	m.qos = qos
	m.retained = retained
	return m.err
}

func TestNewMQTTSink(t *testing.T) {
	t.Run("nil publisher", func(t *testing.T) {
		_, err := NewMQTTSink(nil, "sensory-001", 1)
		if !errors.Is(err, ErrNilPublisher) {
			t.Errorf("expected ErrNilPublisher, got %v", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		s, err := NewMQTTSink(&mockPublisher{}, "sensory-001", 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s == nil {
			t.Fatal("sink should not be nil")
		}
	})
}

func TestSend(t *testing.T) {
	pub := &mockPublisher{}
	s, _ := NewMQTTSink(pub, "sensory-001", 1)

	err := s.Send("fan-01", "set_speed", map[string]any{"speed": 3})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if pub.topic != "sensory/command/fan-01" {
		t.Errorf("topic = %q, want %q", pub.topic, "sensory/command/fan-01")
	}
	if pub.qos != 1 {
		t.Errorf("qos = %d, want 1", pub.qos)
	}
	if pub.retained {
		t.Error("commands must not be retained")
	}

	var envelope CommandEnvelope
	if err := json.Unmarshal(pub.payload, &envelope); err != nil {
		t.Fatalf("invalid envelope JSON: %v", err)
	}
	if envelope.ID == "" {
		t.Error("envelope ID should be set")
	}
	if envelope.DeviceID != "fan-01" {
		t.Errorf("device_id = %q, want %q", envelope.DeviceID, "fan-01")
	}
	if envelope.Command != "set_speed" {
		t.Errorf("command = %q, want %q", envelope.Command, "set_speed")
	}
	if envelope.Source != "sensory-001" {
		t.Errorf("source = %q, want %q", envelope.Source, "sensory-001")
	}
	if got := envelope.Parameters["speed"]; got != float64(3) {
		t.Errorf("parameters[speed] = %v, want 3", got)
	}
}

func TestSendUniqueIDs(t *testing.T) {
	pub := &mockPublisher{}
	s, _ := NewMQTTSink(pub, "sensory-001", 0)

	ids := make(map[string]bool)
	for i := 0; i < 5; i++ {
		if err := s.Send("dev", "cmd", nil); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		var envelope CommandEnvelope
		if err := json.Unmarshal(pub.payload, &envelope); err != nil {
			t.Fatalf("invalid envelope JSON: %v", err)
		}
		if ids[envelope.ID] {
			t.Fatalf("duplicate envelope ID %q", envelope.ID)
		}
		ids[envelope.ID] = true
	}
}

func TestSendPublishError(t *testing.T) {
	wantErr := errors.New("broker down")
	pub := &mockPublisher{err: wantErr}
	s, _ := NewMQTTSink(pub, "sensory-001", 1)

	err := s.Send("fan-01", "set_speed", nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected publish error to propagate, got %v", err)
	}
}

func TestReconfigure(t *testing.T) {
	pub := &mockPublisher{}
	s, _ := NewMQTTSink(pub, "sensory-001", 1)

	err := s.Reconfigure(map[string]any{"profile": "cinema"})
	if err != nil {
		t.Fatalf("Reconfigure failed: %v", err)
	}

	if pub.topic != "sensory/reconfigure" {
		t.Errorf("topic = %q, want %q", pub.topic, "sensory/reconfigure")
	}

	var payload map[string]any
	if err := json.Unmarshal(pub.payload, &payload); err != nil {
		t.Fatalf("invalid payload JSON: %v", err)
	}
	if payload["profile"] != "cinema" {
		t.Errorf("payload = %v, want profile=cinema", payload)
	}
}
