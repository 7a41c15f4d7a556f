package labels

import (
	"fmt"
	"time"

	"TazeAI/internal/domain/models"
	"TazeAI/internal/services/features"
)

// DefaultHorizonDays is the forward window of the training target.
const DefaultHorizonDays = 90

// BuildTrainingExamples labels every row whose same-symbol row horizonDays
// positions ahead exists, with target (close[t+h]-close[t])/close[t].
//
// Targets are computed over the full per-symbol history first; the
// trainUntil cut-off (inclusive, ignored when zero) is applied afterwards, so
// rows near the cut-off keep targets drawn from later data. Rows with a
// non-finite feature value or target are dropped; feature names the row does
// not carry at all are zero-filled. featureNames defaults to the base columns
// followed by the dataset's fundamental columns.
func BuildTrainingExamples(ds models.FeatureDataset, horizonDays int, trainUntil time.Time, featureNames []string) (*models.TrainingSet, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizonDays)
	}
	if len(featureNames) == 0 {
		featureNames = features.DefaultFeatureNames(ds)
	}
	set := &models.TrainingSet{
		FeatureNames: append([]string(nil), featureNames...),
		HorizonDays:  horizonDays,
		TrainUntil:   trainUntil,
	}

	for _, symbol := range ds.Symbols() {
		rows := models.SortRows(ds[symbol])
		for t := 0; t+horizonDays < len(rows); t++ {
			row := &rows[t]
			future := rows[t+horizonDays]
			if row.Close <= 0 {
				continue
			}
			target := (future.Close - row.Close) / row.Close
			if !models.IsFinite(target) {
				continue
			}
			vec, ok := vectorOf(row, featureNames)
			if !ok {
				continue
			}
			if !trainUntil.IsZero() && row.Date.After(trainUntil) {
				continue
			}
			set.Examples = append(set.Examples, models.TrainingExample{
				Symbol:   symbol,
				Date:     row.Date,
				Features: vec,
				Target:   target,
			})
		}
	}
	if len(set.Examples) == 0 {
		return nil, fmt.Errorf("horizon %d, cut-off %s: %w", horizonDays, formatDay(trainUntil), models.ErrEmptyTrainingSet)
	}
	return set, nil
}

// vectorOf rejects the row when a value it carries is not finite.
func vectorOf(row *models.FeatureRow, names []string) ([]float64, bool) {
	vec := make([]float64, len(names))
	for i, name := range names {
		v, present := row.Value(name)
		if !present {
			continue
		}
		if !models.IsFinite(v) {
			return nil, false
		}
		vec[i] = v
	}
	return vec, true
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "none"
	}
	return t.Format("2006-01-02")
}
