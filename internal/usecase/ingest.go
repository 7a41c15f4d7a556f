package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"TazeAI/internal/domain/models"
	drepo "TazeAI/internal/domain/repository"
	"TazeAI/internal/services/features"
	"TazeAI/pkg/logger"
	"TazeAI/pkg/util"
)

// IngestOptions tunes a batch ingestion.
type IngestOptions struct {
	RangeDays   int
	Concurrency int
	// SymbolDelay is the minimum spacing between symbol fetches.
	SymbolDelay time.Duration
}

// IngestSummary reports the outcome of one batch.
type IngestSummary struct {
	Started  time.Time         `json:"started"`
	Duration time.Duration     `json:"duration"`
	OK       []string          `json:"ok"`
	Skipped  map[string]string `json:"skipped,omitempty"`
	Failed   map[string]string `json:"failed,omitempty"`
}

// IngestUseCase fetches provider bundles and writes bronze and silver snapshots.
type IngestUseCase struct {
	provider drepo.MarketDataProvider
	store    drepo.FeatureStore
	metrics  drepo.Metrics
	log      *logger.Logger
	opts     IngestOptions
	limiter  *rate.Limiter
}

func NewIngestUseCase(
	provider drepo.MarketDataProvider,
	store drepo.FeatureStore,
	metrics drepo.Metrics,
	log *logger.Logger,
	opts IngestOptions,
) *IngestUseCase {
	if opts.RangeDays <= 0 {
		opts.RangeDays = 365
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	limit := rate.Inf
	if opts.SymbolDelay > 0 {
		limit = rate.Every(opts.SymbolDelay)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &IngestUseCase{
		provider: provider,
		store:    store,
		metrics:  metrics,
		log:      log,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Run ingests every ticker. Per-symbol failures are collected in the summary;
// an error is returned only when no symbol succeeded or ctx ended.
func (uc *IngestUseCase) Run(ctx context.Context, tickers []string) (*IngestSummary, error) {
	symbols := util.NormalizeSymbols(tickers)
	sum := &IngestSummary{Started: time.Now(), Skipped: map[string]string{}, Failed: map[string]string{}}
	if len(symbols) == 0 {
		return sum, errors.New("ingest: no tickers")
	}
	uc.log.Info("ingest started",
		logger.Int("symbols", len(symbols)),
		logger.Int("concurrency", uc.opts.Concurrency),
		logger.Int("range_days", uc.opts.RangeDays),
	)

	type item struct {
		symbol string
		rows   int
		err    error
	}
	jobs := make(chan string)
	results := make(chan item, len(symbols))
	var wg sync.WaitGroup
	for range min(uc.opts.Concurrency, len(symbols)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				n, err := uc.IngestSymbol(ctx, s)
				results <- item{symbol: s, rows: n, err: err}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, s := range symbols {
			select {
			case jobs <- s:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() { wg.Wait(); close(results) }()

	for it := range results {
		switch {
		case it.err == nil:
			sum.OK = append(sum.OK, it.symbol)
			uc.log.Info("symbol ingested", logger.String("symbol", it.symbol), logger.Int("rows", it.rows))
		case errors.Is(it.err, models.ErrDataUnavailable):
			sum.Skipped[it.symbol] = it.err.Error()
			uc.recordSkip("data_unavailable")
			uc.log.Warn("symbol skipped", logger.String("symbol", it.symbol), logger.Error(it.err))
		default:
			sum.Failed[it.symbol] = it.err.Error()
			uc.recordError("ingest")
			uc.log.Error("symbol failed", logger.String("symbol", it.symbol), logger.Error(it.err))
		}
	}
	sort.Strings(sum.OK)
	sum.Duration = time.Since(sum.Started)
	if uc.metrics != nil {
		uc.metrics.RecordLatency("ingest", sum.Duration.Seconds())
	}
	uc.log.Info("ingest finished",
		logger.Int("ok", len(sum.OK)),
		logger.Int("skipped", len(sum.Skipped)),
		logger.Int("failed", len(sum.Failed)),
		logger.Duration("duration_ms", sum.Duration),
	)

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	if len(sum.OK) == 0 {
		return sum, fmt.Errorf("ingest: all %d symbols failed", len(symbols))
	}
	return sum, nil
}

// IngestSymbol fetches one bundle, stores it raw, and stores its feature
// table. It returns the number of rows written.
func (uc *IngestUseCase) IngestSymbol(ctx context.Context, symbol string) (int, error) {
	if err := uc.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	bundle, err := uc.provider.FetchBundle(ctx, symbol, uc.opts.RangeDays)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if _, err := uc.store.SaveRawSnapshot(ctx, symbol, bundle); err != nil {
		return 0, err
	}
	rows, err := features.BundleToFeatureRows(bundle)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%s: no usable history: %w", symbol, models.ErrDataUnavailable)
	}
	if _, err := uc.store.SaveFeatureTable(ctx, rows); err != nil {
		return 0, err
	}
	if uc.metrics != nil {
		uc.metrics.RecordSnapshotSaved(symbol)
	}
	return len(rows), nil
}

func (uc *IngestUseCase) recordSkip(reason string) {
	if uc.metrics != nil {
		uc.metrics.RecordSymbolSkipped(reason)
	}
}

func (uc *IngestUseCase) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}
