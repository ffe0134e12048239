package sink

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mulsemedia/sensory-core/internal/infrastructure/mqtt"
)

// ErrNilPublisher is returned by NewMQTTSink when no publisher is given.
var ErrNilPublisher = errors.New("sink: publisher cannot be nil")

// Publisher is the broker surface the sink needs. Satisfied by
// mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// CommandEnvelope is the JSON message published for each device command.
type CommandEnvelope struct {
	// ID uniquely identifies this dispatch for tracing and history
	// correlation.
	ID string `json:"id"`

	// DeviceID names the target device.
	DeviceID string `json:"device_id"`

	// Command is the device-level operation, e.g. "set_speed".
	Command string `json:"command"`

	// Parameters carries the resolved command parameters.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Source identifies the publishing service instance.
	Source string `json:"source"`
}

// MQTTSink publishes device commands to the broker. It is stateless and
// safe for concurrent use.
type MQTTSink struct {
	publisher Publisher
	source    string
	qos       byte
}

// NewMQTTSink creates a sink that publishes with the given QoS. source
// is the service instance ID stamped on every envelope.
func NewMQTTSink(publisher Publisher, source string, qos byte) (*MQTTSink, error) {
	if publisher == nil {
		return nil, ErrNilPublisher
	}
	return &MQTTSink{
		publisher: publisher,
		source:    source,
		qos:       qos,
	}, nil
}

// Send publishes a command envelope to sensory/command/{deviceID}.
func (s *MQTTSink) Send(deviceID, command string, params map[string]any) error {
	envelope := CommandEnvelope{
		ID:         uuid.NewString(),
		DeviceID:   deviceID,
		Command:    command,
		Parameters: params,
		Source:     s.source,
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encoding command envelope: %w", err)
	}

	topic := mqtt.Topics{}.DeviceCommand(deviceID)
	if err := s.publisher.Publish(topic, payload, s.qos, false); err != nil {
		return fmt.Errorf("publishing command for %s: %w", deviceID, err)
	}
	return nil
}

// Reconfigure publishes the configuration payload to sensory/reconfigure
// so downstream bridges can pick up new routing state.
func (s *MQTTSink) Reconfigure(config map[string]any) error {
	payload, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding reconfigure payload: %w", err)
	}

	if err := s.publisher.Publish(mqtt.Topics{}.Reconfigure(), payload, s.qos, false); err != nil {
		return fmt.Errorf("publishing reconfigure: %w", err)
	}
	return nil
}
