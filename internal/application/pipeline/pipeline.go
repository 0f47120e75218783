// Package pipeline wires one reconciliation run end to end: load both
// ledgers, coerce amounts, run quality checks, match, and persist the
// run artifacts.
//
// A run is a single synchronous computation; both datasets are fully
// materialized before matching begins and nothing is written when any
// stage fails.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/reconflow/reconflow/internal/domain/dataset"
	"github.com/reconflow/reconflow/internal/domain/matcher"
	"github.com/reconflow/reconflow/internal/domain/validator"
	"github.com/reconflow/reconflow/internal/infrastructure/config"
	"github.com/reconflow/reconflow/internal/infrastructure/storage"
	"github.com/reconflow/reconflow/internal/report"
)

// Pipeline runs reconciliations for one configuration.
type Pipeline struct {
	cfg      *config.Config
	registry *matcher.Registry
	logger   *slog.Logger
}

// New creates a pipeline. The strategy registry is passed in explicitly;
// there is no global registry.
func New(cfg *config.Config, registry *matcher.Registry, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
}

// Result bundles everything one run produced.
type Result struct {
	Summary *report.RunSummary
	Match   *matcher.Result
}

// Run executes the full reconciliation and persists the run artifacts.
func (p *Pipeline) Run() (*Result, error) {
	source, err := p.loadSide("source", p.cfg.Source)
	if err != nil {
		return nil, err
	}
	target, err := p.loadSide("target", p.cfg.Target)
	if err != nil {
		return nil, err
	}

	if err := p.checkQuality("source", source, p.cfg.Source.ReferenceField); err != nil {
		return nil, err
	}
	if err := p.checkQuality("target", target, p.cfg.Target.ReferenceField); err != nil {
		return nil, err
	}

	engine := matcher.NewEngine(p.registry, p.logger)
	matchCfg := matcher.Config{
		SourceRefColumn:    p.cfg.Source.ReferenceField,
		TargetRefColumn:    p.cfg.Target.ReferenceField,
		SourceAmountColumn: p.cfg.Source.AmountField,
		TargetAmountColumn: p.cfg.Target.AmountField,
		Tolerance:          decimal.NewFromFloat(p.cfg.Matching.AmountToleranceAbs),
		NormalizeRefs:      p.cfg.Matching.NormalizeReference,
		Precision:          int32(p.cfg.Matching.DecimalPrecision),
	}

	matchResult, err := engine.Match(p.cfg.Matching.Strategy, source, target, matchCfg)
	if err != nil {
		return nil, err
	}

	summary, err := storage.WriteRunArtifacts(p.cfg.Output.RunDir, p.cfg.PipelineName, matchResult)
	if err != nil {
		return nil, fmt.Errorf("writing run artifacts: %w", err)
	}

	p.logger.Info("run complete",
		slog.String("run_id", summary.RunID),
		slog.Float64("pool_match_pct", summary.Metrics["pool_match_pct"]),
	)

	return &Result{Summary: summary, Match: matchResult}, nil
}

func (p *Pipeline) loadSide(side string, src config.CSVSource) (*dataset.Dataset, error) {
	ds, err := storage.ReadCSV(src.Path)
	if err != nil {
		return nil, fmt.Errorf("loading %s data: %w", side, err)
	}

	storage.CoerceAmounts(ds, src.AmountField)

	p.logger.Info("loaded "+side+" data",
		slog.String("path", src.Path),
		slog.Int("records", ds.Len()),
	)
	return ds, nil
}

// checkQuality logs quality issues; they only fail the run in strict mode.
func (p *Pipeline) checkQuality(side string, ds *dataset.Dataset, refCol string) error {
	result := validator.ValidateDataset(ds, refCol, validator.QualityConfig{
		MinRecordCount:  p.cfg.Quality.MinRecordCount,
		MaxDuplicatePct: p.cfg.Quality.MaxDuplicatePct,
		RequiredFields:  p.cfg.Quality.RequiredFields,
		NormalizeRefs:   p.cfg.Matching.NormalizeReference,
	})

	if result.Valid {
		return nil
	}

	for _, issue := range result.Issues {
		p.logger.Warn("data quality issue",
			slog.String("dataset", side),
			slog.String("issue", issue),
		)
	}

	if p.cfg.Quality.Strict {
		return fmt.Errorf("%s dataset failed quality checks: %d issue(s)", side, len(result.Issues))
	}
	return nil
}
