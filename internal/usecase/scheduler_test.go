package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TazeAI/internal/domain/models"
)

type stubIngester struct {
	sum *IngestSummary
	err error
	got []string
}

func (s *stubIngester) Run(_ context.Context, tickers []string) (*IngestSummary, error) {
	s.got = tickers
	return s.sum, s.err
}

type stubAnalyzer struct {
	calls   int
	refresh bool
}

func (s *stubAnalyzer) Analyze(_ context.Context, symbols []string, refresh bool) ([]models.SignalRecord, error) {
	s.calls++
	s.refresh = refresh
	return make([]models.SignalRecord, len(symbols)), nil
}

func TestSchedulerRunOnce(t *testing.T) {
	ing := &stubIngester{sum: &IngestSummary{OK: []string{"PETR4"}}}
	an := &stubAnalyzer{}
	s := NewScheduler(ing, an, []string{"PETR4"}, nil)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"PETR4"}, ing.got)
	assert.Equal(t, 1, an.calls)
	assert.True(t, an.refresh)
}

func TestSchedulerAnalyzesAfterPartialIngest(t *testing.T) {
	ing := &stubIngester{sum: &IngestSummary{OK: []string{"PETR4"}}, err: context.DeadlineExceeded}
	an := &stubAnalyzer{}
	require.NoError(t, NewScheduler(ing, an, []string{"PETR4", "VALE3"}, nil).RunOnce(context.Background()))
	assert.Equal(t, 1, an.calls)
}

func TestSchedulerStopsWhenIngestFails(t *testing.T) {
	ing := &stubIngester{sum: &IngestSummary{}, err: errBoom}
	an := &stubAnalyzer{}
	require.ErrorIs(t, NewScheduler(ing, an, []string{"PETR4"}, nil).RunOnce(context.Background()), errBoom)
	assert.Zero(t, an.calls)
}

func TestSchedulerStart(t *testing.T) {
	s := NewScheduler(&stubIngester{}, &stubAnalyzer{}, nil, nil)
	require.Error(t, s.Start(""))
	require.Error(t, s.Start("not a cron spec"))
	require.NoError(t, s.Start("0 19 * * 1-5"))
	s.Stop()
}
