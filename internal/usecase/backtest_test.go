package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TazeAI/internal/domain/models"
	"TazeAI/internal/services/backtest"
)

// raw prediction that scores 9 at low volatility
const rawNine = 0.12

func flatRows(symbol string, closes ...float64) []models.FeatureRow {
	out := make([]models.FeatureRow, len(closes))
	for i, c := range closes {
		out[i] = models.FeatureRow{
			Symbol:       symbol,
			Date:         time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Close:        c,
			Volatility21: 0.01,
		}
	}
	return out
}

func TestBacktestRunIsOrderedBySymbolThenProfile(t *testing.T) {
	store := newMemStore()
	store.ds["PETR4"] = flatRows("PETR4", 10, 11, 12)
	store.ds["VALE3"] = flatRows("VALE3", 50, 40, 60)
	store.ds["BBAS3"] = flatRows("BBAS3", 0, -1)
	m := newRecMetrics()
	uc := NewBacktestUseCase(store, &constPredictor{names: []string{"close"}, raw: rawNine},
		nil, backtest.Options{InitialCapital: 1000}, 4, m, nil)

	res, err := uc.Run(context.Background(), []string{"VALE3", "PETR4", "BBAS3", "ITSA4"})
	require.NoError(t, err)

	require.Len(t, res.Reports, 6)
	var got []string
	for _, r := range res.Reports {
		got = append(got, r.Symbol+"/"+r.Profile)
	}
	assert.Equal(t, []string{
		"VALE3/Conservador", "VALE3/Moderado", "VALE3/Agressivo",
		"PETR4/Conservador", "PETR4/Moderado", "PETR4/Agressivo",
	}, got)

	assert.Contains(t, res.Skipped, "BBAS3")
	assert.Contains(t, res.Skipped, "ITSA4")
	assert.Equal(t, 2, m.skipped["no_valid_data"])

	require.Len(t, res.Summaries, 3)
	assert.Equal(t, "Conservador", res.Summaries[0].Profile)
	assert.Equal(t, 2, res.Summaries[0].Symbols)

	// always invested from day one: strategy tracks the baseline
	for _, r := range res.Reports {
		assert.InDelta(t, r.FinalBaselineValue, r.FinalStrategyValue, 1e-9)
		assert.True(t, r.OpenPosition)
	}
}

func TestBacktestRunAllDatasetSymbols(t *testing.T) {
	store := newMemStore()
	store.ds["PETR4"] = flatRows("PETR4", 10, 11)
	uc := NewBacktestUseCase(store, &constPredictor{names: []string{"close", "fund_pl"}, raw: rawNine},
		nil, backtest.Options{}, 1, newRecMetrics(), nil)

	res, err := uc.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Reports, 3)
	assert.Equal(t, []string{"fund_pl"}, res.Reports[0].MissingFeatures)
	assert.Equal(t, backtest.DefaultInitialCapital, res.Reports[0].InitialCapital)
}

func TestBacktestRunFailsWithoutReports(t *testing.T) {
	store := newMemStore()
	store.ds["BBAS3"] = flatRows("BBAS3", 0)
	uc := NewBacktestUseCase(store, &constPredictor{names: []string{"close"}}, nil, backtest.Options{}, 2, nil, nil)

	_, err := uc.Run(context.Background(), nil)
	require.ErrorIs(t, err, models.ErrNoValidData)
}

func TestBacktestRequiresModel(t *testing.T) {
	uc := NewBacktestUseCase(newMemStore(), nil, nil, backtest.Options{}, 1, nil, nil)
	_, err := uc.Run(context.Background(), nil)
	require.ErrorIs(t, err, models.ErrModelNotLoaded)
	_, err = uc.RunSymbol(context.Background(), "PETR4", "Moderado")
	require.ErrorIs(t, err, models.ErrModelNotLoaded)
}

func TestBacktestRunSymbol(t *testing.T) {
	store := newMemStore()
	store.ds["PETR4"] = flatRows("PETR4", 10, 20)
	uc := NewBacktestUseCase(store, &constPredictor{names: []string{"close"}, raw: rawNine},
		nil, backtest.Options{InitialCapital: 100}, 1, nil, nil)

	rep, err := uc.RunSymbol(context.Background(), "petr4", "Agressivo")
	require.NoError(t, err)
	assert.Equal(t, "PETR4", rep.Symbol)
	assert.Equal(t, "Agressivo", rep.Profile)
	assert.InDelta(t, 200, rep.FinalStrategyValue, 1e-9)

	_, err = uc.RunSymbol(context.Background(), "PETR4", "Ousado")
	require.ErrorIs(t, err, models.ErrUnknownProfile)

	_, err = uc.RunSymbol(context.Background(), "ITSA4", "Moderado")
	require.ErrorIs(t, err, models.ErrNoValidData)
}
