package matcher

import (
	"log/slog"

	"github.com/reconflow/reconflow/internal/domain/dataset"
)

// Engine dispatches matching to a named strategy from its registry.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
}

// NewEngine creates an engine over an explicit registry.
func NewEngine(registry *Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: registry,
		logger:   logger,
	}
}

// Match looks up the strategy and runs it against the two datasets.
func (e *Engine) Match(strategy string, source, target *dataset.Dataset, cfg Config) (*Result, error) {
	s, err := e.registry.Get(strategy)
	if err != nil {
		return nil, err
	}

	e.logger.Info("matching records",
		slog.String("strategy", s.Name()),
		slog.Int("source_rows", source.Len()),
		slog.Int("target_rows", target.Len()),
	)

	result, err := s.Match(source, target, cfg)
	if err != nil {
		return nil, err
	}

	e.logger.Info("matching complete",
		slog.Int("matched", result.Matched.Len()),
		slog.Int("missing_in_target", result.MissingInTarget.Len()),
		slog.Int("missing_in_source", result.MissingInSource.Len()),
		slog.Int("amount_mismatches", result.AmountMismatches.Len()),
	)

	return result, nil
}
