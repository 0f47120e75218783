package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/reconflow/reconflow/internal/api"
	"github.com/reconflow/reconflow/internal/infrastructure/config"
	"github.com/reconflow/reconflow/internal/infrastructure/logging"
)

func main() {
	var (
		configPath = flag.String("config", "reconflow.yaml", "Configuration file path")
		port       = flag.Int("port", 0, "Override configured port")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "api")

	if *port != 0 {
		cfg.API.Port = *port
	}

	server := api.NewServer(cfg.API, cfg.Output.RunDir, cfg.PipelineName, logger)
	if err := server.Run(); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
