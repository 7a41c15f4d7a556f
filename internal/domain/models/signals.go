package models

import "time"

// ScoreDetails exposes the inputs behind an analyzer score.
type ScoreDetails struct {
	RawPrediction float64   `json:"raw_prediction"`
	RiskLevel     RiskLevel `json:"risk_level"`
	RiskValue     float64   `json:"risk_value"`
	HorizonDays   int       `json:"horizon_days,omitempty"`
	ZeroFilled    int       `json:"zero_filled_features,omitempty"`
}

// SignalRecord is the analyzer output consumed by persistence and the API.
// Score is nil when the analyzer runs without a model.
type SignalRecord struct {
	Symbol         string             `json:"symbol"`
	CurrentPrice   float64            `json:"current_price"`
	Score          *float64           `json:"score"`
	Status         Status             `json:"status"`
	StatusEmoji    string             `json:"status_emoji"`
	Message        string             `json:"message"`
	LastUpdateDate time.Time          `json:"last_update_date"`
	RSI            *float64           `json:"rsi,omitempty"`
	Volatility     *float64           `json:"volatility,omitempty"`
	StockMetadata  *StockMetadata     `json:"stock_metadata,omitempty"`
	Intraday       *IntradaySnapshot  `json:"intraday,omitempty"`
	Fundamentals   map[string]float64 `json:"fundamentals,omitempty"`
	Details        *ScoreDetails      `json:"score_details,omitempty"`
}
