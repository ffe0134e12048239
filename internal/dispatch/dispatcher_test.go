package dispatch

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/mulsemedia/sensory-core/internal/effect"
)

// mockSink is a test implementation of CommandSink.
type mockSink struct {
	mu sync.Mutex

	sends []sinkCall
	recfg []map[string]any

	sendErr  error
	recfgErr error
}

type sinkCall struct {
	device  string
	command string
	params  map[string]any
}

func (m *mockSink) Send(deviceID, command string, params map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, sinkCall{device: deviceID, command: command, params: params})
	return m.sendErr
}

func (m *mockSink) Reconfigure(config map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recfg = append(m.recfg, config)
	return m.recfgErr
}

func testConfig() *RoutingConfig {
	return &RoutingConfig{
		Effects: map[string]EffectRoute{
			"wind": {
				Device:  "fan-front",
				Command: "set_speed",
				Parameters: []ParameterRule{
					{
						Name:    "intensity",
						Mapping: map[string]any{"low": 60, "medium": 150, "high": 255},
						Default: 100,
					},
				},
			},
			"light": {
				Device:  "lamp-1",
				Command: "set_color",
			},
			"broken": {
				Command: "orphaned",
			},
		},
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("maps enum value through mapping table", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		if err := d.Dispatch("wind", map[string]any{"intensity": "high"}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}

		call := sink.sends[0]
		if call.device != "fan-front" || call.command != "set_speed" {
			t.Errorf("sink call = %s/%s, want fan-front/set_speed", call.device, call.command)
		}
		if call.params["intensity"] != 255 {
			t.Errorf("intensity = %v, want 255", call.params["intensity"])
		}
	})

	t.Run("injects default for omitted parameter", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		if err := d.Dispatch("wind", nil); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		if got := sink.sends[0].params["intensity"]; got != 100 {
			t.Errorf("intensity = %v, want default 100", got)
		}
	})

	t.Run("unmapped value passes through unchanged", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		if err := d.Dispatch("wind", map[string]any{"intensity": 42}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		if got := sink.sends[0].params["intensity"]; got != 42 {
			t.Errorf("intensity = %v, want pass-through 42", got)
		}
	})

	t.Run("undeclared parameters pass through untouched", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		if err := d.Dispatch("wind", map[string]any{"direction": "north"}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		if got := sink.sends[0].params["direction"]; got != "north" {
			t.Errorf("direction = %v, want north", got)
		}
	})

	t.Run("does not mutate the caller's map", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		params := map[string]any{"intensity": "low"}
		if err := d.Dispatch("wind", params); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		if params["intensity"] != "low" {
			t.Errorf("caller map mutated: intensity = %v", params["intensity"])
		}
	})

	t.Run("unknown effect type", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		err := d.Dispatch("explosion", nil)
		if !errors.Is(err, ErrUnknownEffect) {
			t.Errorf("Dispatch() error = %v, want ErrUnknownEffect", err)
		}
		if len(sink.sends) != 0 {
			t.Error("sink invoked for unknown effect")
		}
	})

	t.Run("misconfigured route", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		err := d.Dispatch("broken", nil)
		if !errors.Is(err, ErrMisconfiguredEffect) {
			t.Errorf("Dispatch() error = %v, want ErrMisconfiguredEffect", err)
		}
	})

	t.Run("sink errors propagate unchanged", func(t *testing.T) {
		sinkErr := errors.New("device unreachable")
		sink := &mockSink{sendErr: sinkErr}
		d := New(testConfig(), sink)

		if err := d.Dispatch("light", nil); !errors.Is(err, sinkErr) {
			t.Errorf("Dispatch() error = %v, want sink error", err)
		}
	})
}

func TestDispatcher_DispatchEffectMetadata(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	t.Run("reconfigure never invokes Send", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		e := effect.Effect{
			Type:       EffectReconfigure,
			Parameters: map[string]any{"profile": "cinema"},
		}
		if err := d.DispatchEffectMetadata(e); err != nil {
			t.Fatalf("DispatchEffectMetadata() error = %v", err)
		}

		if len(sink.sends) != 0 {
			t.Error("Send invoked for reconfigure effect")
		}
		if len(sink.recfg) != 1 || sink.recfg[0]["profile"] != "cinema" {
			t.Errorf("Reconfigure calls = %v", sink.recfg)
		}
	})

	t.Run("injects intensity and non-default location", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		e := effect.Effect{
			Type:      "light",
			Intensity: intPtr(80),
			Location:  "front",
			Parameters: map[string]any{
				"color": "red",
			},
		}
		if err := d.DispatchEffectMetadata(e); err != nil {
			t.Fatalf("DispatchEffectMetadata() error = %v", err)
		}

		want := map[string]any{"color": "red", "intensity": 80, "location": "front"}
		if got := sink.sends[0].params; !reflect.DeepEqual(got, want) {
			t.Errorf("params = %v, want %v", got, want)
		}
	})

	t.Run("default location is not injected", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		e := effect.Effect{Type: "light", Location: effect.LocationEverywhere}
		if err := d.DispatchEffectMetadata(e); err != nil {
			t.Fatalf("DispatchEffectMetadata() error = %v", err)
		}
		if _, ok := sink.sends[0].params["location"]; ok {
			t.Error("location injected for default location")
		}
	})

	t.Run("unset intensity is not injected", func(t *testing.T) {
		sink := &mockSink{}
		d := New(testConfig(), sink)

		if err := d.DispatchEffectMetadata(effect.Effect{Type: "light"}); err != nil {
			t.Fatalf("DispatchEffectMetadata() error = %v", err)
		}
		if _, ok := sink.sends[0].params["intensity"]; ok {
			t.Error("intensity injected when unset")
		}
	})
}

// mockEffectSink also implements the EffectSink upgrade.
type mockEffectSink struct {
	mockSink
	effectTypes []string
}

func (m *mockEffectSink) SendEffect(effectType, deviceID, command string, params map[string]any) error {
	m.effectTypes = append(m.effectTypes, effectType)
	return m.Send(deviceID, command, params)
}

func TestDispatcher_EffectSinkUpgrade(t *testing.T) {
	sink := &mockEffectSink{}
	d := New(testConfig(), sink)

	if err := d.Dispatch("light", nil); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if len(sink.effectTypes) != 1 || sink.effectTypes[0] != "light" {
		t.Errorf("expected SendEffect with type %q, got %v", "light", sink.effectTypes)
	}
	if len(sink.sends) != 1 {
		t.Errorf("expected command forwarded once, got %d", len(sink.sends))
	}
}

func TestDispatcher_SupportedEffects(t *testing.T) {
	d := New(testConfig(), &mockSink{})

	want := []string{"broken", "light", "wind"}
	if got := d.SupportedEffects(); !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedEffects() = %v, want %v", got, want)
	}
}

func TestParseRoutingConfig(t *testing.T) {
	yamlSrc := `
effects:
  wind:
    device: fan-front
    command: set_speed
    parameters:
      - name: intensity
        mapping:
          low: 60
          high: 255
        default: 100
`
	cfg, err := ParseRoutingConfig([]byte(yamlSrc))
	if err != nil {
		t.Fatalf("ParseRoutingConfig() error = %v", err)
	}

	route, ok := cfg.Effects["wind"]
	if !ok {
		t.Fatal("wind route missing")
	}
	if route.Device != "fan-front" || route.Command != "set_speed" {
		t.Errorf("route = %+v", route)
	}
	if len(route.Parameters) != 1 {
		t.Fatalf("parameters = %v, want 1 rule", route.Parameters)
	}
	rule := route.Parameters[0]
	if rule.Mapping["high"] != 255 || rule.Default != 100 {
		t.Errorf("rule = %+v", rule)
	}

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := ParseRoutingConfig([]byte("effects: [")); err == nil {
			t.Error("ParseRoutingConfig() expected error for invalid YAML")
		}
	})

	t.Run("empty document yields empty map", func(t *testing.T) {
		cfg, err := ParseRoutingConfig([]byte(""))
		if err != nil {
			t.Fatalf("ParseRoutingConfig() error = %v", err)
		}
		if cfg.Effects == nil {
			t.Error("Effects map not initialised")
		}
	})
}
