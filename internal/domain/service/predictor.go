package service

import "context"

// Predictor maps an ordered feature vector to a raw expected forward return.
type Predictor interface {
	FeatureNames() []string
	HorizonDays() int
	Predict(ctx context.Context, features []float64) (float64, error)
}
