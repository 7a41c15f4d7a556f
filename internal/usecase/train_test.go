package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TazeAI/internal/domain/models"
	"TazeAI/internal/services/features"
	"TazeAI/internal/services/model"
)

func trendRows(symbol string, n int, step float64) []models.FeatureRow {
	pts := make([]models.PricePoint, n)
	for i := range pts {
		c := 20 + step*float64(i) + float64(i%3)
		pts[i] = models.PricePoint{Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return features.ComputeFeatureRows(symbol, pts, nil)
}

func TestTrainRunFitsAndSavesArtifact(t *testing.T) {
	store := newMemStore()
	store.ds["PETR4"] = trendRows("PETR4", 60, 0.5)
	store.ds["VALE3"] = trendRows("VALE3", 60, -0.2)
	uc := NewTrainUseCase(store, nil)
	uc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	out := filepath.Join(t.TempDir(), "gold", "model.json")
	res, err := uc.Run(context.Background(), TrainParams{
		HorizonDays:  5,
		FeatureNames: []string{"close", "rsi_14", "momentum_10"},
		Output:       out,
	})
	require.NoError(t, err)
	assert.Equal(t, out, res.Path)
	assert.Equal(t, 5, res.Artifact.HorizonDays)
	assert.Equal(t, "2024-05-31", res.Artifact.TrainUntil)
	assert.Equal(t, 2*(60-5), res.Artifact.Examples)

	loaded, err := model.Load(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"close", "rsi_14", "momentum_10"}, loaded.FeatureNames())
}

func TestTrainRunWithoutDataset(t *testing.T) {
	_, err := NewTrainUseCase(newMemStore(), nil).Run(context.Background(), TrainParams{})
	require.ErrorIs(t, err, models.ErrNoDataset)
}

func TestTrainRunCutOffBeforeData(t *testing.T) {
	store := newMemStore()
	store.ds["PETR4"] = trendRows("PETR4", 20, 0.5)
	_, err := NewTrainUseCase(store, nil).Run(context.Background(), TrainParams{
		HorizonDays: 5,
		TrainUntil:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, models.ErrEmptyTrainingSet)
}
