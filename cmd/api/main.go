package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/zwhub/pkg/api"
	"github.com/urmzd/zwhub/pkg/api/handlers"
	"github.com/urmzd/zwhub/pkg/config"
	"github.com/urmzd/zwhub/pkg/device/schema"
	"github.com/urmzd/zwhub/pkg/hub"

	_ "github.com/urmzd/zwhub/docs"
)

// @title           zwhub API
// @version         1.0
// @description     REST API for a Z-Wave controller: devices, unit diagnostics and pairing

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

func main() {
	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Flags override the environment
	dbPath := flag.String("db", cfg.DBPath, "Path to database file (default: ~/.config/zwhub/zwhub.db)")
	serialPort := flag.String("port", cfg.SerialPort, "Path to Z-Wave serial port (default: from the active profile)")
	flag.Parse()
	cfg.DBPath = *dbPath
	cfg.SerialPort = *serialPort

	zerolog.SetGlobalLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := hub.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer h.Close()

	var units handlers.UnitController
	if h.Units != nil {
		units = h.Units
	}

	router := api.NewRouter(h.Controller, h.Events, units, schema.NewValidator())

	srv := &http.Server{
		Addr:              h.Config.APIAddress(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().Str("address", srv.Addr).Msg("Starting API server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server failed")
	}
}
