package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/zwhub/pkg/config"
	"github.com/urmzd/zwhub/pkg/device/schema"
	"github.com/urmzd/zwhub/pkg/hub"
	zwmcp "github.com/urmzd/zwhub/pkg/mcp"
)

func main() {
	// Logging must go to stderr, stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	dbPath := flag.String("db", cfg.DBPath, "Path to database file (default: ~/.config/zwhub/zwhub.db)")
	serialPort := flag.String("port", cfg.SerialPort, "Path to Z-Wave serial port (default: from the active profile)")
	flag.Parse()
	cfg.DBPath = *dbPath
	cfg.SerialPort = *serialPort

	zerolog.SetGlobalLevel(cfg.Level())

	h, err := hub.Open(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer h.Close()

	var units zwmcp.UnitController
	if h.Units != nil {
		units = h.Units
	}

	// Create and start MCP server
	mcpServer := zwmcp.NewServer(h.Controller, units, schema.NewValidator())

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
}
