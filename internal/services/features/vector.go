package features

import "TazeAI/internal/domain/models"

// Vector orders row values by names. Names the row does not carry, or whose
// value is not finite, are zero-filled and reported in missing.
func Vector(row *models.FeatureRow, names []string) (vec []float64, missing []string) {
	vec = make([]float64, len(names))
	for i, name := range names {
		v, ok := row.Value(name)
		if !ok || !models.IsFinite(v) {
			missing = append(missing, name)
			continue
		}
		vec[i] = v
	}
	return vec, missing
}

// DefaultFeatureNames is the base column order followed by the dataset's
// fundamental columns.
func DefaultFeatureNames(ds models.FeatureDataset) []string {
	return append(models.BaseColumns(), ds.FundamentalColumns()...)
}
