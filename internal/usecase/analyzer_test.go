package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TazeAI/internal/domain/models"
	"TazeAI/internal/service/cache"
)

func analyzerStore() *memStore {
	s := newMemStore()
	rows := flatRows("PETR4", 30, 31, 32)
	rows[2].RSI14 = 61
	rows[2].Fundamentals = map[string]float64{"fund_p_l": 4.2}
	s.ds["PETR4"] = rows
	s.ds["VALE3"] = flatRows("VALE3", 70)
	s.raw["PETR4"] = historyBundle("PETR4", 1)
	return s
}

func TestAnalyzeScoresLatestRow(t *testing.T) {
	m := newRecMetrics()
	pub := &recPublisher{}
	a := NewMarketAnalyzer(analyzerStore(), &constPredictor{names: []string{"close", "rsi_14", "fund_dy"}, raw: rawNine},
		nil, WithPublisher(pub), WithAnalyzerMetrics(m))

	recs, err := a.Analyze(context.Background(), []string{"petr4", "VALE3", "ITSA4"}, false)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	r := recs[0]
	assert.Equal(t, "PETR4", r.Symbol)
	require.NotNil(t, r.Score)
	assert.InDelta(t, 9, *r.Score, 1e-9)
	assert.Equal(t, models.StatusBuy, r.Status)
	assert.NotEmpty(t, r.StatusEmoji)
	assert.Equal(t, time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC), r.LastUpdateDate)
	// intraday quote wins over the last close
	assert.InDelta(t, 42.5, r.CurrentPrice, 1e-9)
	require.NotNil(t, r.StockMetadata)
	assert.Equal(t, "PETR4 SA", r.StockMetadata.Name)
	require.NotNil(t, r.RSI)
	assert.Equal(t, 61.0, *r.RSI)
	assert.Equal(t, 4.2, r.Fundamentals["fund_p_l"])
	require.NotNil(t, r.Details)
	assert.Equal(t, models.RiskLow, r.Details.RiskLevel)
	assert.Equal(t, 1, r.Details.ZeroFilled)

	// no raw snapshot: feature-table close and no metadata
	assert.Equal(t, 70.0, recs[1].CurrentPrice)
	assert.Nil(t, recs[1].StockMetadata)

	assert.Equal(t, 2, m.zeroFilled)
	assert.InDelta(t, 9, m.scores["PETR4"], 1e-9)
	require.Len(t, pub.batches, 1)
	assert.Len(t, pub.batches[0], 2)
}

func TestAnalyzeDegradedWithoutModel(t *testing.T) {
	a := NewMarketAnalyzer(analyzerStore(), nil, nil)
	assert.True(t, a.Degraded())

	recs, err := a.Analyze(context.Background(), []string{"PETR4"}, false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Score)
	assert.Equal(t, models.StatusNeutral, recs[0].Status)
	assert.Contains(t, recs[0].Message, "Modelo indisponível")
	assert.InDelta(t, 42.5, recs[0].CurrentPrice, 1e-9)
}

func TestAnalyzePredictErrorFallsBackToDegraded(t *testing.T) {
	m := newRecMetrics()
	a := NewMarketAnalyzer(analyzerStore(), &constPredictor{names: []string{"close"}, err: errBoom}, nil, WithAnalyzerMetrics(m))

	recs, err := a.Analyze(context.Background(), []string{"VALE3"}, false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Score)
	assert.Equal(t, 1, m.errs["predict"])
}

func TestAnalyzeUsesCacheUnlessRefresh(t *testing.T) {
	pred := &constPredictor{names: []string{"close"}, raw: rawNine}
	c := &mapCache{}
	a := NewMarketAnalyzer(analyzerStore(), pred, nil, WithSignalCache(c, time.Minute))

	_, err := a.Analyze(context.Background(), []string{"VALE3", "PETR4"}, false)
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), []string{"PETR4", "VALE3"}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, pred.calls)
	assert.Contains(t, c.m, cache.SignalsKey([]string{"PETR4", "VALE3"}))

	_, err = a.Analyze(context.Background(), []string{"PETR4", "VALE3"}, true)
	require.NoError(t, err)
	assert.Equal(t, 4, pred.calls)
	assert.Equal(t, []time.Duration{time.Minute, time.Minute}, c.ttls)
}

func TestAnalyzePublishErrorIsNotFatal(t *testing.T) {
	m := newRecMetrics()
	a := NewMarketAnalyzer(analyzerStore(), nil, nil, WithPublisher(&recPublisher{err: errBoom}), WithAnalyzerMetrics(m))
	recs, err := a.Analyze(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, 1, m.errs["publish"])
}

func TestAnalyzeWithoutDataset(t *testing.T) {
	a := NewMarketAnalyzer(newMemStore(), nil, nil)
	_, err := a.Analyze(context.Background(), []string{"PETR4"}, false)
	require.ErrorIs(t, err, models.ErrNoDataset)
}
