// Sensory Core - multi-sensory effect runtime
//
// sensoryd hosts the device registry, effect dispatcher, and timeline
// playback scheduler behind an MQTT adapter. Protocol bridges announce
// devices and trigger effects over the sensory/* topics; resolved
// device commands are published back for renderer bridges to execute.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mulsemedia/sensory-core/migrations"

	mqttbridge "github.com/mulsemedia/sensory-core/internal/bridges/mqtt"
	"github.com/mulsemedia/sensory-core/internal/dispatch"
	"github.com/mulsemedia/sensory-core/internal/history"
	"github.com/mulsemedia/sensory-core/internal/infrastructure/config"
	"github.com/mulsemedia/sensory-core/internal/infrastructure/database"
	"github.com/mulsemedia/sensory-core/internal/infrastructure/logging"
	"github.com/mulsemedia/sensory-core/internal/infrastructure/mqtt"
	"github.com/mulsemedia/sensory-core/internal/registry"
	"github.com/mulsemedia/sensory-core/internal/sink"
	"github.com/mulsemedia/sensory-core/internal/timeline"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run holds the application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Sensory Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath)

	// Dispatch history store (optional).
	var repo history.Repository
	if cfg.History.Enabled {
		db, err := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database ready", "path", cfg.Database.Path)

		repo, err = history.NewSQLiteRepository(db)
		if err != nil {
			return fmt.Errorf("creating history repository: %w", err)
		}
	} else {
		log.Info("dispatch history disabled")
	}

	// MQTT broker connection.
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Command sink chain: MQTT publisher, optionally audit-logged.
	var commandSink dispatch.CommandSink
	mqttSink, err := sink.NewMQTTSink(mqttClient, cfg.Service.ID, byte(cfg.MQTT.QoS))
	if err != nil {
		return fmt.Errorf("creating command sink: %w", err)
	}
	commandSink = mqttSink
	if repo != nil {
		commandSink, err = history.NewRecordingSink(mqttSink, repo, log)
		if err != nil {
			return fmt.Errorf("creating recording sink: %w", err)
		}
	}

	// Effect dispatcher over the routing config.
	routing, err := dispatch.LoadRoutingConfig(cfg.Effects.RoutingPath)
	if err != nil {
		return fmt.Errorf("loading effect routing: %w", err)
	}
	dispatcher := dispatch.New(routing, commandSink)
	log.Info("effect routing loaded",
		"path", cfg.Effects.RoutingPath,
		"effects", len(dispatcher.SupportedEffects()),
	)

	// Device registry.
	devices := registry.New()
	devices.SetLogger(log)
	devices.SetIsolation(cfg.Registry.Isolation)
	devices.AddListener(func(event registry.EventType, dev registry.DeviceInfo) {
		log.Info("registry event", "event", string(event), "device_id", dev.ID)
	})

	// Playback scheduler.
	player := timeline.NewPlayer(dispatcher)
	player.SetLogger(log)
	if err := player.SetTickInterval(cfg.TickInterval()); err != nil {
		return fmt.Errorf("configuring player tick: %w", err)
	}
	if err := player.SetStopTimeout(cfg.StopTimeout()); err != nil {
		return fmt.Errorf("configuring player stop timeout: %w", err)
	}
	defer player.Stop()

	// Reference MQTT bridge wiring it all to the broker.
	bridge, err := mqttbridge.New(mqttClient, devices, dispatcher, player, log, byte(cfg.MQTT.QoS))
	if err != nil {
		return fmt.Errorf("creating MQTT bridge: %w", err)
	}
	if err := bridge.Start(); err != nil {
		return fmt.Errorf("starting MQTT bridge: %w", err)
	}
	defer bridge.Stop()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred cleanup runs in reverse order: bridge, player, MQTT,
	// database.

	log.Info("Sensory Core stopped")
	return nil
}

// getConfigPath returns the configuration file path. Uses the
// SENSORY_CONFIG environment variable if set, otherwise the default.
func getConfigPath() string {
	if path := os.Getenv("SENSORY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
