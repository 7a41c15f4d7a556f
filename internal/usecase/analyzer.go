package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TazeAI/internal/domain/models"
	drepo "TazeAI/internal/domain/repository"
	domsvc "TazeAI/internal/domain/service"
	"TazeAI/internal/service/cache"
	"TazeAI/internal/services/features"
	"TazeAI/internal/services/scoring"
	"TazeAI/pkg/logger"
	"TazeAI/pkg/util"
)

// MarketAnalyzer produces live signal records from the latest feature rows.
type MarketAnalyzer struct {
	store     drepo.FeatureStore
	predictor domsvc.Predictor
	cache     drepo.SignalCache
	publisher drepo.SignalPublisher
	metrics   drepo.Metrics
	log       *logger.Logger
	ttl       time.Duration
}

type AnalyzerOption func(*MarketAnalyzer)

// WithSignalCache memoizes Analyze results for ttl.
func WithSignalCache(c drepo.SignalCache, ttl time.Duration) AnalyzerOption {
	return func(a *MarketAnalyzer) { a.cache, a.ttl = c, ttl }
}

func WithPublisher(p drepo.SignalPublisher) AnalyzerOption {
	return func(a *MarketAnalyzer) { a.publisher = p }
}

func WithAnalyzerMetrics(m drepo.Metrics) AnalyzerOption {
	return func(a *MarketAnalyzer) { a.metrics = m }
}

// NewMarketAnalyzer builds an analyzer. A nil predictor runs it degraded:
// records carry market data but no score.
func NewMarketAnalyzer(store drepo.FeatureStore, predictor domsvc.Predictor, log *logger.Logger, opts ...AnalyzerOption) *MarketAnalyzer {
	if log == nil {
		log = logger.NewNop()
	}
	a := &MarketAnalyzer{store: store, predictor: predictor, log: log}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Degraded reports whether no model is loaded.
func (a *MarketAnalyzer) Degraded() bool { return a.predictor == nil }

// Analyze scores the latest row of each symbol. Symbols missing from the
// dataset are skipped. refresh bypasses the cache.
func (a *MarketAnalyzer) Analyze(ctx context.Context, symbols []string, refresh bool) ([]models.SignalRecord, error) {
	symbols = util.NormalizeSymbols(symbols)
	key := cache.SignalsKey(symbols)
	if a.cache != nil && !refresh {
		if recs, ok := a.cache.Get(ctx, key); ok {
			return recs, nil
		}
	}

	start := time.Now()
	ds, err := a.store.LoadConsolidatedDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if len(symbols) == 0 {
		symbols = ds.Symbols()
	}

	out := make([]models.SignalRecord, 0, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, ok := ds.Latest(sym)
		if !ok {
			a.log.Debug("symbol not in dataset", logger.String("symbol", sym))
			continue
		}
		out = append(out, a.record(ctx, &row))
	}

	if a.publisher != nil && len(out) > 0 {
		if err := a.publisher.PublishSignals(ctx, out); err != nil {
			a.log.Error("publish signals failed", logger.Int("records", len(out)), logger.Error(err))
			if a.metrics != nil {
				a.metrics.RecordError("publish")
			}
		}
	}
	if a.cache != nil {
		a.cache.Set(ctx, key, out, a.ttl)
	}
	if a.metrics != nil {
		a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	}
	a.log.Info("analysis finished",
		logger.Int("requested", len(symbols)),
		logger.Int("records", len(out)),
		logger.Bool("degraded", a.Degraded()),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (a *MarketAnalyzer) record(ctx context.Context, row *models.FeatureRow) models.SignalRecord {
	rec := models.SignalRecord{
		Symbol:         row.Symbol,
		CurrentPrice:   row.Close,
		LastUpdateDate: row.Date,
		Fundamentals:   row.Fundamentals,
	}
	if v := row.RSI14; models.IsFinite(v) {
		rec.RSI = &v
	}
	if v := row.Volatility21; models.IsFinite(v) {
		rec.Volatility = &v
	}
	a.mergeSnapshot(ctx, &rec)

	status := scoring.DegradedStatus()
	if a.predictor != nil {
		if st, err := a.score(ctx, row, &rec); err != nil {
			a.log.Warn("prediction failed", logger.String("symbol", row.Symbol), logger.Error(err))
			if a.metrics != nil {
				a.metrics.RecordError("predict")
			}
		} else {
			status = st
		}
	}
	rec.Status = status.Status
	rec.Message = status.Message
	rec.StatusEmoji = status.Emoji
	return rec
}

func (a *MarketAnalyzer) score(ctx context.Context, row *models.FeatureRow, rec *models.SignalRecord) (models.SignalStatus, error) {
	vec, missing := features.Vector(row, a.predictor.FeatureNames())
	if len(missing) > 0 {
		a.log.Warn("zero-filled model features",
			logger.String("symbol", row.Symbol),
			logger.Int("count", len(missing)),
			logger.Strings("features", missing),
		)
		if a.metrics != nil {
			a.metrics.RecordZeroFilled(len(missing))
		}
	}
	raw, err := a.predictor.Predict(ctx, vec)
	if err != nil {
		return models.SignalStatus{}, err
	}
	res := scoring.PredictionToScore(raw, row.Volatility21)
	score := res.Score
	rec.Score = &score
	rec.Details = &models.ScoreDetails{
		RawPrediction: raw,
		RiskLevel:     res.RiskLevel,
		RiskValue:     res.RiskValue,
		HorizonDays:   a.predictor.HorizonDays(),
		ZeroFilled:    len(missing),
	}
	if a.metrics != nil {
		a.metrics.RecordScore(row.Symbol, score)
	}
	return scoring.StatusForScore(score), nil
}

// mergeSnapshot adds metadata and the intraday quote from the latest raw
// bundle. A positive intraday price replaces the feature-table close.
func (a *MarketAnalyzer) mergeSnapshot(ctx context.Context, rec *models.SignalRecord) {
	bundle, err := a.store.LatestRawSnapshot(ctx, rec.Symbol)
	if err != nil {
		if !errors.Is(err, models.ErrDataUnavailable) {
			a.log.Warn("raw snapshot lookup failed", logger.String("symbol", rec.Symbol), logger.Error(err))
		}
		return
	}
	rec.StockMetadata = features.ParseMetadata(bundle.Info)
	if q := features.ParseIntraday(bundle.Intraday); q != nil {
		rec.Intraday = q
		if q.Price > 0 {
			rec.CurrentPrice = q.Price
		}
	}
}
