package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"TazeAI/internal/domain/models"
	"TazeAI/pkg/logger"
)

type batchIngester interface {
	Run(ctx context.Context, tickers []string) (*IngestSummary, error)
}

type signalAnalyzer interface {
	Analyze(ctx context.Context, symbols []string, refresh bool) ([]models.SignalRecord, error)
}

// DefaultPipelineTimeout bounds one scheduled ingest and analyze run.
const DefaultPipelineTimeout = 30 * time.Minute

// Scheduler runs ingest then analyze on a cron schedule. Overlapping runs
// are skipped.
type Scheduler struct {
	ingest   batchIngester
	analyzer signalAnalyzer
	tickers  []string
	timeout  time.Duration
	cron     *cron.Cron
	log      *logger.Logger
}

func NewScheduler(ingest batchIngester, analyzer signalAnalyzer, tickers []string, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		ingest:   ingest,
		analyzer: analyzer,
		tickers:  tickers,
		timeout:  DefaultPipelineTimeout,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:      log,
	}
}

// Start registers the pipeline under a standard five-field cron spec.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		return errors.New("scheduler: empty schedule")
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_ = s.RunOnce(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("pipeline scheduler started", logger.String("schedule", schedule))
	return nil
}

// Stop halts scheduling and waits for a running pipeline to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("pipeline scheduler stopped")
}

// RunOnce ingests the configured tickers and refreshes their signals.
// Analysis still runs after a partial ingest.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	sum, err := s.ingest.Run(ctx, s.tickers)
	if err != nil {
		s.log.Error("scheduled ingest failed", logger.Error(err))
		if sum == nil || len(sum.OK) == 0 {
			return err
		}
	}
	ingested := 0
	if sum != nil {
		ingested = len(sum.OK)
	}
	recs, err := s.analyzer.Analyze(ctx, s.tickers, true)
	if err != nil {
		s.log.Error("scheduled analysis failed", logger.Error(err))
		return err
	}
	s.log.Info("scheduled pipeline completed",
		logger.Int("ingested", ingested),
		logger.Int("signals", len(recs)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}
