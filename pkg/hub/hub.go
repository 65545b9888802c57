// Package hub assembles the database, the Z-Wave controller and the MQTT
// publisher for the binaries.
package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/zwhub/pkg/config"
	"github.com/urmzd/zwhub/pkg/db"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/events"
	"github.com/urmzd/zwhub/pkg/zwave"
)

const mqttConnectTimeout = 10 * time.Second

// Hub owns everything a binary needs to serve requests.
type Hub struct {
	DB     *db.DB
	Config *db.Config

	Controller device.Controller
	Events     device.EventSubscriber

	// Units is nil when no Z-Wave stick could be opened.
	Units *zwave.Controller

	publisher *events.Publisher
	cancel    context.CancelFunc
}

// Open prepares the database, connects to the stick and starts polling.
// A missing stick is not an error; the hub then runs on a NullController.
func Open(ctx context.Context, cfg *config.Config) (*Hub, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Info().Str("path", database.Path()).Msg("Database opened")

	h := &Hub{DB: database}
	if err := h.loadConfig(ctx); err != nil {
		database.Close()
		return nil, err
	}

	log.Info().
		Str("profile", h.Config.Profile.Name).
		Str("timezone", h.Config.Timezone()).
		Str("api_address", h.Config.APIAddress()).
		Msg("Configuration loaded")

	if cfg.MQTT.Enabled() {
		h.publisher = events.NewPublisher(cfg.MQTT)
	}

	port := cfg.SerialPort
	if port == "" {
		port = h.Config.SerialPort()
	}

	opts := zwave.Options{
		Store:    database.Units(h.Config.Profile.ID),
		Settings: Settings(h.Config.Controller),
	}
	if h.publisher != nil {
		opts.Sink = h.publisher
	}

	zc, err := zwave.NewController(port, opts)
	if err != nil {
		log.Warn().Err(err).Str("port", port).Msg("Z-Wave controller unavailable, using null controller")
		h.Controller = device.NewNullController()
		h.Events = device.NewNullEventSubscriber()
	} else {
		h.Controller = zc
		h.Events = zc
		h.Units = zc

		runCtx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go zc.Run(runCtx)
	}

	if h.publisher != nil {
		h.publisher.HandleCommands(h.Controller)
		connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
		defer cancel()
		if err := h.publisher.Connect(connectCtx); err != nil {
			log.Warn().Err(err).Str("host", cfg.MQTT.Host).Msg("MQTT broker not reachable yet, retrying in background")
		}
	}

	return h, nil
}

func (h *Hub) loadConfig(ctx context.Context) error {
	if err := h.DB.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	needsBootstrap, err := h.DB.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("check bootstrap status: %w", err)
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		if err := h.DB.Bootstrap(ctx); err != nil {
			return fmt.Errorf("bootstrap database: %w", err)
		}
		log.Info().Msg("Database bootstrapped successfully")
	}

	active, err := h.DB.ActiveConfig(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	h.Config = active
	return nil
}

// Settings converts stored controller settings to driver settings. Zero
// values fall back to the driver defaults.
func Settings(s *db.ControllerSettings) zwave.Settings {
	if s == nil {
		return zwave.DefaultSettings()
	}
	return zwave.Settings{
		PollPeriod:      s.PollPeriod,
		PollInterval:    s.PollInterval,
		MaxRetries:      s.MaxRetries,
		ResponseTimeout: s.ResponseTimeout,
	}
}

// Close stops polling, then shuts down the publisher, the controller and
// the database in that order.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
	if h.publisher != nil {
		h.publisher.Close()
	}
	if h.Controller != nil {
		h.Controller.Close()
	}
	if err := h.DB.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}
}
