package mqtt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mulsemedia/sensory-core/internal/infrastructure/config"
)

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device command", topics.DeviceCommand("fan-01"), "sensory/command/fan-01"},
		{"reconfigure", topics.Reconfigure(), "sensory/reconfigure"},
		{"device announce", topics.DeviceAnnounce(), "sensory/device/announce"},
		{"effect trigger", topics.EffectTrigger(), "sensory/effect/trigger"},
		{"timeline control", topics.TimelineControl(), "sensory/timeline/control"},
		{"system status", topics.SystemStatus(), "sensory/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "broker.local",
			Port:     8883,
			TLS:      true,
			ClientID: "sensory-test",
		},
		Auth: config.MQTTAuthConfig{
			Username: "user",
			Password: "pass",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
	}
	url := opts.Servers[0].String()
	if !strings.HasPrefix(url, "ssl://") {
		t.Errorf("TLS broker URL should use ssl scheme, got %q", url)
	}
	if !strings.Contains(url, "broker.local:8883") {
		t.Errorf("broker URL missing host:port, got %q", url)
	}
	if opts.ClientID != "sensory-test" {
		t.Errorf("client ID = %q, want %q", opts.ClientID, "sensory-test")
	}
	if opts.Username != "user" {
		t.Errorf("username = %q, want %q", opts.Username, "user")
	}
	if !opts.AutoReconnect {
		t.Error("auto-reconnect should be enabled")
	}
	if opts.TLSConfig == nil {
		t.Error("TLS config should be set when TLS is enabled")
	}
}

func TestBuildClientOptionsPlaintext(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "localhost",
			Port:     1883,
			ClientID: "sensory-core",
		},
	}

	opts := buildClientOptions(cfg)

	url := opts.Servers[0].String()
	if !strings.HasPrefix(url, "tcp://") {
		t.Errorf("plaintext broker URL should use tcp scheme, got %q", url)
	}
	if opts.Username != "" {
		t.Error("username should be empty when no credentials configured")
	}
}

func TestStatusPayload(t *testing.T) {
	t.Run("online has no reason", func(t *testing.T) {
		var msg map[string]string
		if err := json.Unmarshal([]byte(statusPayload("online", "c1", "")), &msg); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if msg["status"] != "online" || msg["client_id"] != "c1" {
			t.Errorf("unexpected payload: %v", msg)
		}
		if _, ok := msg["reason"]; ok {
			t.Error("online payload should not carry a reason")
		}
	})

	t.Run("offline carries reason", func(t *testing.T) {
		var msg map[string]string
		payload := statusPayload("offline", "c1", "graceful_shutdown")
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if msg["reason"] != "graceful_shutdown" {
			t.Errorf("reason = %q, want %q", msg["reason"], "graceful_shutdown")
		}
	})
}

func TestPublishValidation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Publish("", nil, 0, false); err != ErrInvalidTopic {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("t", nil, 3, false); err != ErrInvalidQoS {
		t.Errorf("bad QoS: got %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Subscribe("", 0, func(string, []byte) error { return nil }); err != ErrInvalidTopic {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("t", 3, func(string, []byte) error { return nil }); err != ErrInvalidQoS {
		t.Errorf("bad QoS: got %v, want ErrInvalidQoS", err)
	}
}
