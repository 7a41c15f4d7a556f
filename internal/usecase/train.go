package usecase

import (
	"context"
	"fmt"
	"time"

	"TazeAI/internal/domain/models"
	drepo "TazeAI/internal/domain/repository"
	"TazeAI/internal/services/features"
	"TazeAI/internal/services/labels"
	"TazeAI/internal/services/model"
	"TazeAI/pkg/logger"
	"TazeAI/pkg/util"
)

// TrainParams configures one training run.
type TrainParams struct {
	HorizonDays int
	// TrainUntil is the last example date; zero means yesterday.
	TrainUntil time.Time
	Lambda     float64
	// Output is the artifact path; empty skips saving.
	Output string
	// FeatureNames overrides the dataset-derived column order.
	FeatureNames []string
}

// TrainResult describes a fitted artifact.
type TrainResult struct {
	Artifact model.Artifact
	Path     string
	Model    *model.LinearModel
}

// TrainUseCase builds labeled examples and fits the ridge model.
type TrainUseCase struct {
	store drepo.FeatureStore
	log   *logger.Logger
	now   func() time.Time
}

func NewTrainUseCase(store drepo.FeatureStore, log *logger.Logger) *TrainUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &TrainUseCase{store: store, log: log, now: time.Now}
}

// Run loads the consolidated dataset, labels it and fits the model.
// ErrNoDataset and ErrEmptyTrainingSet are returned wrapped.
func (uc *TrainUseCase) Run(ctx context.Context, p TrainParams) (*TrainResult, error) {
	start := uc.now()
	if p.HorizonDays <= 0 {
		p.HorizonDays = labels.DefaultHorizonDays
	}
	if p.TrainUntil.IsZero() {
		p.TrainUntil = util.Yesterday(start)
	}
	if p.Lambda == 0 {
		p.Lambda = model.DefaultLambda
	}

	ds, err := uc.store.LoadConsolidatedDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("train: %w", models.ErrEmptyDataset)
	}
	names := p.FeatureNames
	if len(names) == 0 {
		names = features.DefaultFeatureNames(ds)
	}

	set, err := labels.BuildTrainingExamples(ds, p.HorizonDays, p.TrainUntil, names)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	m, err := model.FitRidge(set, p.Lambda, start)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	res := &TrainResult{Artifact: m.Artifact(), Model: m}
	if p.Output != "" {
		if err := m.Save(p.Output); err != nil {
			return nil, fmt.Errorf("train: save artifact: %w", err)
		}
		res.Path = p.Output
	}
	uc.log.Info("model trained",
		logger.Int("symbols", len(ds)),
		logger.Int("examples", len(set.Examples)),
		logger.Int("features", len(names)),
		logger.Int("horizon_days", p.HorizonDays),
		logger.String("train_until", p.TrainUntil.Format("2006-01-02")),
		logger.Float64("rmse_in_sample", res.Artifact.RMSEInSample),
		logger.String("path", res.Path),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return res, nil
}
