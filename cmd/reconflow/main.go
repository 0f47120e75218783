package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/reconflow/reconflow/internal/application/pipeline"
	"github.com/reconflow/reconflow/internal/cli"
	"github.com/reconflow/reconflow/internal/domain/matcher"
	"github.com/reconflow/reconflow/internal/infrastructure/config"
	"github.com/reconflow/reconflow/internal/infrastructure/logging"
	"github.com/reconflow/reconflow/internal/infrastructure/storage"
)

const version = "0.1.0"

const usage = `reconflow - config-driven reconciliation for fintech ledgers

Usage:
  reconflow run -config <reconflow.yaml>      Run a reconciliation pipeline
  reconflow validate -config <reconflow.yaml> Validate a configuration file
  reconflow explain [flags]                   Explain a persisted run
  reconflow version                           Show version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "validate":
		err = validateCmd(os.Args[2:])
	case "explain":
		err = explainCmd(os.Args[2:])
	case "version":
		fmt.Printf("reconflow v%s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "reconflow.yaml", "Configuration file path")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *verbose {
		cfg.Observability.Logging.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "run")

	logger.Info("running pipeline", slog.String("pipeline", cfg.PipelineName))

	p := pipeline.New(cfg, matcher.DefaultRegistry(), logger)
	result, err := p.Run()
	if err != nil {
		return err
	}

	fmt.Println()
	cli.PrintSummary(result.Summary)
	return nil
}

func validateCmd(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "reconflow.yaml", "Configuration file path")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Strategy names are owned by the registry, not the config schema.
	if _, err := matcher.DefaultRegistry().Get(cfg.Matching.Strategy); err != nil {
		return err
	}

	for _, path := range []string{cfg.Source.Path, cfg.Target.Path} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("data file not found: %s", path)
		}
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  Pipeline: %s\n", cfg.PipelineName)
	fmt.Printf("  Strategy: %s\n", cfg.Matching.Strategy)
	return nil
}

func explainCmd(args []string) error {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	runDir := fs.String("run-dir", ".reconflow/runs", "Runs directory")
	pipelineName := fs.String("pipeline", "default", "Pipeline name")
	runID := fs.String("run-id", "", "Run to explain (default: latest)")
	_ = fs.Parse(args)

	id := *runID
	if id == "" {
		latest, err := storage.LatestRunID(*runDir, *pipelineName)
		if err != nil {
			return fmt.Errorf("no runs found, run: reconflow run -config <config>: %w", err)
		}
		id = latest
	}

	summary, err := storage.ReadSummary(*runDir, *pipelineName, id)
	if err != nil {
		return err
	}

	cli.PrintExplain(summary)
	return nil
}
