package model

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TazeAI/internal/domain/models"
)

func linearSet(n int) *models.TrainingSet {
	set := &models.TrainingSet{FeatureNames: []string{"momentum_10", "rsi_14", "fund_pl"}, HorizonDays: 90}
	for i := range n {
		x1 := float64(i%17) / 10
		x2 := float64((i*7)%11) * 3
		set.Examples = append(set.Examples, models.TrainingExample{
			Features: []float64{x1, x2, 4},
			Target:   0.5*x1 - 0.002*x2 + 0.01,
		})
	}
	return set
}

func TestFitRidgeRecoversLinearRelation(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m, err := FitRidge(linearSet(200), 1e-6, now)
	require.NoError(t, err)

	art := m.Artifact()
	assert.Equal(t, TypeLinear, art.ModelType)
	assert.Equal(t, 90, m.HorizonDays())
	assert.Equal(t, 200, art.Examples)
	assert.Less(t, art.RMSEInSample, 1e-4)
	assert.InDelta(t, 0.0, art.Coefficients[2], 1e-12, "constant column carries no weight")

	got, err := m.Predict(context.Background(), []float64{1.2, 9, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.5*1.2-0.002*9+0.01, got, 1e-4)
}

func TestFitRidgeShrinksWithLambda(t *testing.T) {
	set := linearSet(100)
	loose, err := FitRidge(set, 0, time.Now())
	require.NoError(t, err)
	tight, err := FitRidge(set, 1e4, time.Now())
	require.NoError(t, err)
	assert.Less(t, abs(tight.Artifact().Coefficients[0]), abs(loose.Artifact().Coefficients[0]))
}

func TestFitRidgeRejectsEmpty(t *testing.T) {
	_, err := FitRidge(&models.TrainingSet{FeatureNames: []string{"close"}}, 1, time.Now())
	assert.True(t, errors.Is(err, models.ErrEmptyTrainingSet))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, err := FitRidge(linearSet(50), DefaultLambda, time.Now())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "gold", "model.json")
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.FeatureNames(), loaded.FeatureNames())

	in := []float64{0.3, 12, 4}
	a, _ := m.Predict(context.Background(), in)
	b, _ := loaded.Predict(context.Background(), in)
	assert.InDelta(t, a, b, 1e-12)

	_, err = loaded.Predict(context.Background(), []float64{1})
	assert.Error(t, err)
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrModelNotLoaded))
}

func TestLoadRejectsDegenerateScales(t *testing.T) {
	m, err := FitRidge(linearSet(50), DefaultLambda, time.Now())
	require.NoError(t, err)

	for name, scale := range map[string]float64{"zero": 0, "negative": -1, "inf": math.Inf(1)} {
		art := m.Artifact()
		art.Scales = append([]float64(nil), art.Scales...)
		art.Scales[1] = scale
		_, err := NewLinearModel(art)
		assert.ErrorContains(t, err, "rsi_14", name)
	}

	art := m.Artifact()
	art.Scales = []float64{1, 0, 1}
	b, err := json.Marshal(art)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrModelNotLoaded))

	art = m.Artifact()
	art.Coefficients = []float64{1, math.NaN(), 1}
	_, err = NewLinearModel(art)
	assert.ErrorContains(t, err, "not finite")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
