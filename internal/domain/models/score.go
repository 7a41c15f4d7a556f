package models

// RiskLevel is the discrete volatility bucket used for the risk penalty.
type RiskLevel string

const (
	RiskLow      RiskLevel = "BAIXO"
	RiskModerate RiskLevel = "MODERADO"
	RiskHigh     RiskLevel = "ALTO"
)

// ScoreResult is the bounded buy-and-hold score for one evaluation.
type ScoreResult struct {
	Score     float64   `json:"score"`
	RiskLevel RiskLevel `json:"risk_level"`
	RiskValue float64   `json:"risk_value"`
}

// Status is the discrete trading signal derived from a score.
type Status string

const (
	StatusNeutral Status = "NEUTRO"
	StatusRadar   Status = "RADAR"
	StatusBuy     Status = "COMPRA"
)

// SignalStatus pairs a status with its user-facing message.
type SignalStatus struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Emoji   string `json:"emoji"`
}
