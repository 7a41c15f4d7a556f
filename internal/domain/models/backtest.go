package models

import "time"

// Portfolio is the single-position state of one backtest run.
type Portfolio struct {
	Cash   float64
	Shares float64
}

// Value marks the portfolio to market at price.
func (p Portfolio) Value(price float64) float64 { return p.Cash + p.Shares*price }

// Invested reports whether the portfolio holds a position.
func (p Portfolio) Invested() bool { return p.Shares > 0 }

// TradeRecord is a closed round trip.
type TradeRecord struct {
	EntryDate   time.Time `json:"entry_date"`
	EntryPrice  float64   `json:"entry_price"`
	ExitDate    time.Time `json:"exit_date"`
	ExitPrice   float64   `json:"exit_price"`
	ReturnPct   float64   `json:"return_pct"`
	HoldingDays int       `json:"holding_days"`
}

// EquityPoint is one step of the strategy and buy-and-hold curves.
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Strategy float64   `json:"strategy"`
	Baseline float64   `json:"baseline"`
	Score    float64   `json:"score"`
}

// BacktestReport summarizes one (symbol, profile) simulation.
type BacktestReport struct {
	Symbol             string        `json:"symbol"`
	Profile            string        `json:"profile"`
	InitialCapital     float64       `json:"initial_capital"`
	FinalStrategyValue float64       `json:"final_strategy_value"`
	FinalBaselineValue float64       `json:"final_baseline_value"`
	StrategyReturnPct  float64       `json:"strategy_return_pct"`
	BaselineReturnPct  float64       `json:"baseline_return_pct"`
	Alpha              float64       `json:"alpha"`
	TotalTrades        int           `json:"total_trades"`
	WinningTrades      int           `json:"winning_trades"`
	WinRate            float64       `json:"win_rate"`
	AvgTradeReturn     float64       `json:"avg_trade_return"`
	AvgHoldingDays     float64       `json:"avg_holding_days"`
	MaxDrawdownPct     float64       `json:"max_drawdown_pct"`
	OpenPosition       bool          `json:"open_position"`
	MissingFeatures    []string      `json:"missing_features,omitempty"`
	From               time.Time     `json:"from"`
	To                 time.Time     `json:"to"`
	Trades             []TradeRecord `json:"trades"`
	Curve              []EquityPoint `json:"curve"`
}

// ProfileSummary aggregates alpha across the symbols run for a profile.
type ProfileSummary struct {
	Profile  string  `json:"profile"`
	Symbols  int     `json:"symbols"`
	AvgAlpha float64 `json:"avg_alpha"`
	Beating  int     `json:"beating_baseline"`
}
