package models

import "time"

// TrainingExample is one labeled row: the feature vector at t and the
// forward return to t+horizon.
type TrainingExample struct {
	Symbol   string
	Date     time.Time
	Features []float64
	Target   float64
}

// TrainingSet carries the examples and the column order of their vectors.
type TrainingSet struct {
	FeatureNames []string
	HorizonDays  int
	TrainUntil   time.Time
	Examples     []TrainingExample
}

// Targets returns the target column.
func (s *TrainingSet) Targets() []float64 {
	out := make([]float64, len(s.Examples))
	for i, e := range s.Examples {
		out[i] = e.Target
	}
	return out
}
