package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TazeAI/internal/domain/models"
	drepo "TazeAI/internal/domain/repository"
	domsvc "TazeAI/internal/domain/service"
	"TazeAI/internal/services/backtest"
	"TazeAI/pkg/logger"
	"TazeAI/pkg/util"
)

// BacktestResult is the outcome of a batch replay.
type BacktestResult struct {
	Reports   []*models.BacktestReport
	Summaries []models.ProfileSummary
	// Skipped holds symbols without replayable data or that failed to score.
	Skipped map[string]string
}

// BacktestUseCase replays every profile over the consolidated dataset.
type BacktestUseCase struct {
	store     drepo.FeatureStore
	predictor domsvc.Predictor
	profiles  []backtest.Profile
	engine    *backtest.Engine
	workers   int
	metrics   drepo.Metrics
	log       *logger.Logger
}

func NewBacktestUseCase(
	store drepo.FeatureStore,
	predictor domsvc.Predictor,
	profiles []backtest.Profile,
	opts backtest.Options,
	workers int,
	metrics drepo.Metrics,
	log *logger.Logger,
) *BacktestUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	if len(profiles) == 0 {
		profiles = backtest.DefaultProfiles()
	}
	uc := &BacktestUseCase{
		store:     store,
		predictor: predictor,
		profiles:  profiles,
		workers:   workers,
		metrics:   metrics,
		log:       log,
	}
	if predictor != nil {
		uc.engine = backtest.NewEngine(predictor, opts, log)
	}
	return uc
}

// Profiles returns the configured profiles in report order.
func (uc *BacktestUseCase) Profiles() []backtest.Profile { return uc.profiles }

// Run replays symbols, or every dataset symbol when none are given. Reports
// are ordered by symbol, then profile. A symbol without data is skipped; a
// run that produces no report at all is an error.
func (uc *BacktestUseCase) Run(ctx context.Context, symbols []string) (*BacktestResult, error) {
	if uc.engine == nil {
		return nil, fmt.Errorf("backtest: %w", models.ErrModelNotLoaded)
	}
	start := time.Now()
	ds, err := uc.store.LoadConsolidatedDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}
	symbols = util.NormalizeSymbols(symbols)
	if len(symbols) == 0 {
		symbols = ds.Symbols()
	}

	type item struct {
		reports []*models.BacktestReport
		err     error
	}
	results := make([]item, len(symbols))
	idx := make(chan int)
	var wg sync.WaitGroup
	for range min(uc.workers, len(symbols)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				reps, err := uc.runRows(ctx, symbols[i], ds[symbols[i]], uc.profiles)
				results[i] = item{reports: reps, err: err}
			}
		}()
	}
	for i := range symbols {
		if ctx.Err() != nil {
			break
		}
		idx <- i
	}
	close(idx)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &BacktestResult{Skipped: map[string]string{}}
	for i, it := range results {
		if it.err != nil {
			res.Skipped[symbols[i]] = it.err.Error()
			reason := "backtest_failed"
			if errors.Is(it.err, models.ErrNoValidData) {
				reason = "no_valid_data"
			}
			uc.recordSkip(reason)
			uc.log.Warn("backtest symbol skipped", logger.String("symbol", symbols[i]), logger.Error(it.err))
			continue
		}
		res.Reports = append(res.Reports, it.reports...)
	}
	res.Summaries = backtest.Summaries(res.Reports, uc.profiles)
	if uc.metrics != nil {
		uc.metrics.RecordLatency("backtest", time.Since(start).Seconds())
	}
	uc.log.Info("backtest finished",
		logger.Int("symbols", len(symbols)),
		logger.Int("reports", len(res.Reports)),
		logger.Int("skipped", len(res.Skipped)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	if len(res.Reports) == 0 {
		return res, fmt.Errorf("backtest: no symbol produced a report: %w", models.ErrNoValidData)
	}
	return res, nil
}

// RunSymbol replays one profile for one symbol.
func (uc *BacktestUseCase) RunSymbol(ctx context.Context, symbol, profile string) (*models.BacktestReport, error) {
	if uc.engine == nil {
		return nil, models.ErrModelNotLoaded
	}
	p, ok := backtest.FindProfile(uc.profiles, profile)
	if !ok {
		return nil, fmt.Errorf("%q: %w", profile, models.ErrUnknownProfile)
	}
	syms := util.NormalizeSymbols([]string{symbol})
	if len(syms) == 0 {
		return nil, errors.New("symbol required")
	}
	ds, err := uc.store.LoadConsolidatedDataset(ctx)
	if err != nil {
		return nil, err
	}
	reps, err := uc.runRows(ctx, syms[0], ds[syms[0]], []backtest.Profile{p})
	if err != nil {
		return nil, err
	}
	return reps[0], nil
}

func (uc *BacktestUseCase) runRows(ctx context.Context, symbol string, rows []models.FeatureRow, profiles []backtest.Profile) ([]*models.BacktestReport, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoValidData)
	}
	scored, err := uc.engine.Score(ctx, symbol, rows)
	if err != nil {
		return nil, err
	}
	if n := len(scored.Missing); n > 0 && uc.metrics != nil {
		uc.metrics.RecordZeroFilled(n)
	}
	reports := make([]*models.BacktestReport, 0, len(profiles))
	for _, p := range profiles {
		rep, err := uc.engine.Simulate(scored, p)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (uc *BacktestUseCase) recordSkip(reason string) {
	if uc.metrics != nil {
		uc.metrics.RecordSymbolSkipped(reason)
	}
}
