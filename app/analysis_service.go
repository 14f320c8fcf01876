package app

import (
	"context"
	"fmt"
	"time"

	"drawlab/domain/core"
	"drawlab/domain/draw"
	"drawlab/domain/result"
	"drawlab/internal/analysis/patterns"
	"drawlab/internal/analysis/returns"
	"drawlab/internal/analysis/statistics"
	"drawlab/internal/config"
	"drawlab/internal/errors"
	"drawlab/internal/generation"
	"drawlab/internal/logging"
	"drawlab/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// generationStream names the random stream candidates are drawn from.
const generationStream = "generation"

// AnalysisService runs the full pipeline: statistics and returns, pattern
// detection, candidate generation and the novelty filter.
type AnalysisService struct {
	rngPort ports.RNGPort
	runs    ports.RunRepository
	logger  zerolog.Logger
	now     func() time.Time
}

// AnalysisRequest is one analysis invocation.
type AnalysisRequest struct {
	Series draw.Series
	Source string
	Engine config.EngineConfig
}

// NewAnalysisService creates an analysis service. runs may be nil, in which
// case bundles are returned but not stored.
func NewAnalysisService(rngPort ports.RNGPort, runs ports.RunRepository, logger zerolog.Logger) *AnalysisService {
	return &AnalysisService{
		rngPort: rngPort,
		runs:    runs,
		logger:  logging.Component(logger, "analysis"),
		now:     time.Now,
	}
}

// AnalyzeRows validates raw rows against the engine rules and analyzes them.
// A row that is not a valid draw fails the call with a MalformedDrawError.
func (s *AnalysisService) AnalyzeRows(ctx context.Context, rows [][]int, source string, engine config.EngineConfig) (*result.Bundle, error) {
	if err := engine.Validate(); err != nil {
		return nil, err
	}
	series, err := draw.NewSeries(engine.Rules(), rows)
	if err != nil {
		return nil, errors.Wrap(err, "invalid series")
	}
	return s.Analyze(ctx, AnalysisRequest{Series: series, Source: source, Engine: engine})
}

// Analyze produces a result bundle for the series.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*result.Bundle, error) {
	started := s.now()
	engine := req.Engine
	if err := engine.Validate(); err != nil {
		return nil, err
	}

	// Draws built under other rules are checked again against the engine's.
	series := req.Series
	if series.Rules() != engine.Rules() {
		rechecked, err := draw.FromDraws(engine.Rules(), series.Draws())
		if err != nil {
			return nil, errors.Wrap(err, "series does not match the configured draw rules")
		}
		series = rechecked
	}
	if series.IsEmpty() {
		return nil, errors.Wrap(core.NewEmptyInputError("analysis"), "nothing to analyze")
	}

	runID := core.NewRunID()
	log := s.logger.With().
		Str("run_id", runID.String()).
		Str("source", req.Source).
		Int("draws", series.Len()).
		Logger()
	log.Info().Int("k", engine.K).Int("n", engine.N).Int64("seed", engine.Seed).Msg("analysis started")

	var st result.Statistics
	var ret result.ReturnAnalysis
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		st, err = statistics.Compute(series)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		ret = returns.Compute(series, engine.BlockSize)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "statistics failed")
	}

	found := patterns.NewDetector(engine.ZThreshold).Detect(series, st, ret)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rnd, err := s.rngPort.SeededStream(ctx, generationStream, engine.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open random stream")
	}
	generator, err := generation.NewGenerator(
		generation.NewBasis(series.Rules(), st, ret),
		generation.Config{
			BiasStrength:    engine.BiasStrength,
			SumTolerance:    engine.SumTolerance,
			ParityTolerance: engine.ParityTolerance,
			MaxResamples:    generation.DefaultMaxResamples,
		},
		rnd,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build candidate generator")
	}

	filter := generation.NewFilter(series)
	candidates, err := filter.Fill(generation.WithContext(ctx, generator), engine.TargetCount, engine.MaxAttempts)
	if err != nil {
		log.Warn().Err(err).
			Int("accepted", len(candidates)).
			Int("attempts", filter.Attempts()).
			Msg("candidate generation stopped")
		return nil, errors.Wrap(err, "candidate generation failed")
	}

	bundle := &result.Bundle{
		RunID:       runID,
		Source:      req.Source,
		Fingerprint: series.Fingerprint(),
		Statistics:  st,
		Returns:     ret,
		Patterns:    found,
		Candidates:  candidates,
		Settings:    engine.Settings(),
		Attempts:    filter.Attempts(),
		CreatedAt:   s.now().UTC(),
	}
	bundle.Summary = Summarize(bundle)
	bundle.ReturnAnalysis = DescribeReturns(bundle)

	if s.runs != nil {
		if err := s.runs.Save(ctx, bundle); err != nil {
			return nil, errors.Wrap(err, "failed to store run")
		}
	}

	log.Info().
		Str("fingerprint", bundle.Fingerprint.Short()).
		Int("patterns", len(found)).
		Int("candidates", len(candidates)).
		Int("attempts", filter.Attempts()).
		Dur("elapsed", s.now().Sub(started)).
		Msg("analysis finished")

	return bundle, nil
}

// Get loads a stored run.
func (s *AnalysisService) Get(ctx context.Context, id core.RunID) (*result.Bundle, error) {
	if s.runs == nil {
		return nil, errors.Wrap(core.NewNotFoundError("run", id.String()), "run history is disabled")
	}
	bundle, err := s.runs.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load run %s", id)
	}
	return bundle, nil
}

// ListRecent returns the newest stored runs.
func (s *AnalysisService) ListRecent(ctx context.Context, limit int) ([]result.RunSummary, error) {
	if s.runs == nil {
		return []result.RunSummary{}, nil
	}
	if limit <= 0 || limit > 500 {
		return nil, errors.InvalidInput(fmt.Sprintf("limit must be within [1, 500], got %d", limit))
	}
	return s.runs.ListRecent(ctx, limit)
}
