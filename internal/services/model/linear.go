package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"TazeAI/internal/domain/models"
)

// TypeLinear identifies a standardized ridge regression artifact.
const TypeLinear = "linear"

// Artifact is the frozen, serialized form of a trained model.
type Artifact struct {
	ModelType    string    `json:"model_type"`
	FeatureNames []string  `json:"feature_names"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Means        []float64 `json:"means"`
	Scales       []float64 `json:"scales"`
	HorizonDays  int       `json:"horizon_days"`
	TrainUntil   string    `json:"train_until,omitempty"`
	RMSEInSample float64   `json:"rmse_in_sample"`
	Lambda       float64   `json:"lambda"`
	Examples     int       `json:"examples"`
	TrainedAt    time.Time `json:"trained_at"`
}

func (a *Artifact) validate() error {
	if a.ModelType != TypeLinear {
		return fmt.Errorf("unsupported model type %q", a.ModelType)
	}
	p := len(a.FeatureNames)
	if p == 0 {
		return errors.New("artifact has no feature names")
	}
	if len(a.Coefficients) != p || len(a.Means) != p || len(a.Scales) != p {
		return fmt.Errorf("artifact dimensions disagree: %d names, %d coefficients, %d means, %d scales",
			p, len(a.Coefficients), len(a.Means), len(a.Scales))
	}
	for j, sc := range a.Scales {
		if !(sc > 0) || math.IsInf(sc, 0) {
			return fmt.Errorf("artifact scale for %s must be positive and finite, got %v", a.FeatureNames[j], sc)
		}
	}
	for j := range a.Coefficients {
		if !models.IsFinite(a.Coefficients[j]) || !models.IsFinite(a.Means[j]) {
			return fmt.Errorf("artifact parameters for %s are not finite", a.FeatureNames[j])
		}
	}
	if !models.IsFinite(a.Intercept) {
		return errors.New("artifact intercept is not finite")
	}
	return nil
}

// LinearModel evaluates an Artifact.
type LinearModel struct {
	art Artifact
}

// NewLinearModel validates art and wraps it.
func NewLinearModel(art Artifact) (*LinearModel, error) {
	if err := art.validate(); err != nil {
		return nil, err
	}
	return &LinearModel{art: art}, nil
}

func (m *LinearModel) Artifact() Artifact { return m.art }

func (m *LinearModel) FeatureNames() []string { return append([]string(nil), m.art.FeatureNames...) }

func (m *LinearModel) HorizonDays() int { return m.art.HorizonDays }

// Predict returns the expected forward return for a vector ordered as FeatureNames.
func (m *LinearModel) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) != len(m.art.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.art.Coefficients), len(features))
	}
	y := m.art.Intercept
	for j, x := range features {
		y += m.art.Coefficients[j] * (x - m.art.Means[j]) / m.art.Scales[j]
	}
	return y, nil
}

// Load reads an artifact from path. A missing file yields models.ErrModelNotLoaded.
func Load(path string) (*LinearModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, models.ErrModelNotLoaded)
		}
		return nil, fmt.Errorf("read model: %w", err)
	}
	var art Artifact
	if err := json.Unmarshal(b, &art); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	return NewLinearModel(art)
}

// Save writes the artifact as indented JSON, creating parent directories.
func (m *LinearModel) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	b, err := json.MarshalIndent(m.art, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return os.Rename(tmp, path)
}
