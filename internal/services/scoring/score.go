package scoring

import (
	"math"

	"TazeAI/internal/domain/models"
)

// Fixed score constants.
const (
	MinReturn = -0.15
	MaxReturn = 0.15

	RiskLowThreshold  = 0.015
	RiskHighThreshold = 0.035

	MaxScore = 10.0
)

var riskPenalty = map[models.RiskLevel]float64{
	models.RiskLow:      0.0,
	models.RiskModerate: 0.4,
	models.RiskHigh:     0.8,
}

// ClassifyRisk buckets a daily-return volatility. NaN is treated as ALTO.
func ClassifyRisk(volatility float64) models.RiskLevel {
	switch {
	case math.IsNaN(volatility):
		return models.RiskHigh
	case volatility < RiskLowThreshold:
		return models.RiskLow
	case volatility < RiskHighThreshold:
		return models.RiskModerate
	default:
		return models.RiskHigh
	}
}

// Penalty returns the score deduction of a risk level.
func Penalty(level models.RiskLevel) float64 {
	if p, ok := riskPenalty[level]; ok {
		return p
	}
	return riskPenalty[models.RiskHigh]
}

// PredictionToScore maps an expected return to [0,10]: the prediction is
// clamped to [MinReturn, MaxReturn], scaled linearly to [0,10], reduced by the
// risk penalty and clamped again. A NaN prediction counts as 0.
func PredictionToScore(rawPrediction, volatility float64) models.ScoreResult {
	if math.IsNaN(rawPrediction) {
		rawPrediction = 0
	}
	clamped := math.Max(MinReturn, math.Min(MaxReturn, rawPrediction))
	base := (clamped - MinReturn) / (MaxReturn - MinReturn) * MaxScore
	level := ClassifyRisk(volatility)
	riskValue := volatility
	if !models.IsFinite(riskValue) || riskValue < 0 {
		riskValue = 0
	}
	return models.ScoreResult{
		Score:     math.Max(0, math.Min(MaxScore, base-Penalty(level))),
		RiskLevel: level,
		RiskValue: riskValue,
	}
}

// Round2 rounds a score for display.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }
