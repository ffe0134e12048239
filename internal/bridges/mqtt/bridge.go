package mqttbridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mulsemedia/sensory-core/internal/effect"
	"github.com/mulsemedia/sensory-core/internal/infrastructure/mqtt"
	"github.com/mulsemedia/sensory-core/internal/registry"
	"github.com/mulsemedia/sensory-core/internal/timeline"
)

// Protocol is the protocol name this bridge registers devices under.
const Protocol = "mqtt"

// ErrNilDependency is returned by New when a required collaborator is
// missing.
var ErrNilDependency = errors.New("mqttbridge: missing dependency")

// Subscriber is the broker surface the bridge consumes. Satisfied by
// mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// DeviceRegistry is the registry surface the bridge needs.
type DeviceRegistry interface {
	Register(data registry.DeviceInfo, sourceProtocol string) (*registry.DeviceInfo, error)
	Unregister(id string) bool
}

// EffectDispatcher forwards discrete effects to device commands.
type EffectDispatcher interface {
	DispatchEffectMetadata(e effect.Effect) error
}

// Player is the playback surface the bridge drives.
type Player interface {
	Load(tl *effect.Timeline) error
	Start() error
	Pause() error
	Resume() error
	Stop()
	Seek(ms int64) error
	AddEventEffect(e effect.Effect) error
	Status() timeline.Status
}

// Logger is the minimal logging surface the bridge needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Bridge wires the inbound sensory topics to the core runtime.
type Bridge struct {
	sub        Subscriber
	devices    DeviceRegistry
	dispatcher EffectDispatcher
	player     Player
	logger     Logger
	qos        byte

	topics []string
}

// New creates a bridge over the given collaborators. All of them are
// required.
func New(sub Subscriber, devices DeviceRegistry, dispatcher EffectDispatcher, player Player, logger Logger, qos byte) (*Bridge, error) {
	if sub == nil || devices == nil || dispatcher == nil || player == nil || logger == nil {
		return nil, ErrNilDependency
	}
	return &Bridge{
		sub:        sub,
		devices:    devices,
		dispatcher: dispatcher,
		player:     player,
		logger:     logger,
		qos:        qos,
	}, nil
}

// Start subscribes to the inbound topics. Call Stop to unsubscribe.
func (b *Bridge) Start() error {
	topics := mqtt.Topics{}
	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{topics.DeviceAnnounce(), b.handleAnnounce},
		{topics.EffectTrigger(), b.handleTrigger},
		{topics.TimelineControl(), b.handleControl},
	}

	for _, s := range subs {
		if err := b.sub.Subscribe(s.topic, b.qos, s.handler); err != nil {
			b.stopSubscriptions()
			return fmt.Errorf("subscribing to %s: %w", s.topic, err)
		}
		b.topics = append(b.topics, s.topic)
	}

	b.logger.Info("mqtt bridge started", "topics", len(b.topics))
	return nil
}

// Stop unsubscribes from all bridge topics.
func (b *Bridge) Stop() {
	b.stopSubscriptions()
	b.logger.Info("mqtt bridge stopped")
}

func (b *Bridge) stopSubscriptions() {
	for _, topic := range b.topics {
		if err := b.sub.Unsubscribe(topic); err != nil {
			b.logger.Warn("unsubscribe failed", "topic", topic, "error", err)
		}
	}
	b.topics = nil
}

// announcePayload is the device announcement message. A device resends
// it periodically as a heartbeat; re-registration refreshes last_seen.
type announcePayload struct {
	registry.DeviceInfo
	// Remove requests removal instead of registration.
	Remove bool `json:"remove,omitempty"`
}

func (b *Bridge) handleAnnounce(topic string, payload []byte) error {
	var msg announcePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding device announcement: %w", err)
	}

	if msg.Remove {
		if b.devices.Unregister(msg.ID) {
			b.logger.Info("device removed", "device_id", msg.ID)
		}
		return nil
	}

	dev, err := b.devices.Register(msg.DeviceInfo, Protocol)
	if err != nil {
		return fmt.Errorf("registering device %q: %w", msg.ID, err)
	}
	b.logger.Info("device announced",
		"device_id", dev.ID,
		"type", dev.Type,
		"protocols", dev.Protocols,
	)
	return nil
}

func (b *Bridge) handleTrigger(topic string, payload []byte) error {
	var e effect.Effect
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("decoding effect trigger: %w", err)
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid effect trigger: %w", err)
	}

	// Effects carrying an event ID are layered over the running
	// timeline; everything else dispatches immediately.
	if e.EventID != nil {
		if err := b.player.AddEventEffect(e); err != nil {
			return fmt.Errorf("adding event effect: %w", err)
		}
		return nil
	}
	if err := b.dispatcher.DispatchEffectMetadata(e); err != nil {
		return fmt.Errorf("dispatching effect %q: %w", e.Type, err)
	}
	return nil
}

// controlPayload drives the playback scheduler.
type controlPayload struct {
	Action   string            `json:"action"`
	Position *int64            `json:"position,omitempty"`
	Effects  []effect.Effect   `json:"effects,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (b *Bridge) handleControl(topic string, payload []byte) error {
	var msg controlPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding timeline control: %w", err)
	}

	var err error
	switch msg.Action {
	case "load":
		var tl *effect.Timeline
		tl, err = effect.NewTimeline(msg.Effects, msg.Metadata)
		if err == nil {
			err = b.player.Load(tl)
		}
	case "start":
		err = b.player.Start()
	case "pause":
		err = b.player.Pause()
	case "resume":
		err = b.player.Resume()
	case "stop":
		b.player.Stop()
	case "seek":
		if msg.Position == nil {
			err = errors.New("seek requires a position")
		} else {
			err = b.player.Seek(*msg.Position)
		}
	case "status":
		st := b.player.Status()
		b.logger.Info("playback status",
			"running", st.IsRunning,
			"paused", st.IsPaused,
			"position_ms", st.Position,
			"total_ms", st.TotalDuration,
			"pending", st.PendingEffects,
		)
	default:
		err = fmt.Errorf("unknown action %q", msg.Action)
	}

	if err != nil {
		return fmt.Errorf("timeline control %q: %w", msg.Action, err)
	}
	return nil
}
