package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"TazeAI/internal/domain/models"
	domsvc "TazeAI/internal/domain/service"
	"TazeAI/internal/services/features"
	"TazeAI/internal/services/scoring"
	"TazeAI/pkg/logger"
)

// Defaults of the simulation.
const (
	DefaultInitialCapital = 10000.0
	DefaultLookbackDays   = 730
)

// Options configures an Engine.
type Options struct {
	InitialCapital float64
	// LookbackDays keeps only rows within this many days of the last row; 0 keeps all.
	LookbackDays int
}

// Engine replays the score and status pipeline over a symbol's history.
type Engine struct {
	predictor domsvc.Predictor
	opts      Options
	log       *logger.Logger
}

func NewEngine(predictor domsvc.Predictor, opts Options, log *logger.Logger) *Engine {
	if opts.InitialCapital <= 0 {
		opts.InitialCapital = DefaultInitialCapital
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{predictor: predictor, opts: opts, log: log}
}

// ScoredRow is one replayable day: price, score and risk label.
type ScoredRow struct {
	Date  time.Time
	Close float64
	Score float64
	Risk  models.RiskLevel
}

// Scored is the per-symbol input shared by every profile.
type Scored struct {
	Symbol  string
	Rows    []ScoredRow
	Missing []string
}

// Score predicts every valid row inside the lookback window once. Feature
// names the rows do not carry are zero-filled and reported in Missing.
func (e *Engine) Score(ctx context.Context, symbol string, rows []models.FeatureRow) (*Scored, error) {
	rows = e.window(models.SortRows(rows))
	names := e.predictor.FeatureNames()

	out := &Scored{Symbol: symbol, Rows: make([]ScoredRow, 0, len(rows))}
	missingSet := map[string]struct{}{}
	for i := range rows {
		row := &rows[i]
		if row.Close <= 0 {
			continue
		}
		vec, missing := features.Vector(row, names)
		for _, m := range missing {
			missingSet[m] = struct{}{}
		}
		raw, err := e.predictor.Predict(ctx, vec)
		if err != nil {
			return nil, fmt.Errorf("%s %s: predict: %w", symbol, row.Date.Format("2006-01-02"), err)
		}
		res := scoring.PredictionToScore(raw, row.Volatility21)
		out.Rows = append(out.Rows, ScoredRow{Date: row.Date, Close: row.Close, Score: res.Score, Risk: res.RiskLevel})
	}
	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoValidData)
	}
	for m := range missingSet {
		out.Missing = append(out.Missing, m)
	}
	sort.Strings(out.Missing)
	if len(out.Missing) > 0 {
		e.log.Warn("zero-filled model features",
			logger.String("symbol", symbol),
			logger.Int("count", len(out.Missing)),
			logger.Strings("features", out.Missing),
		)
	}
	return out, nil
}

// Run scores rows and simulates every profile on the same scores.
func (e *Engine) Run(ctx context.Context, symbol string, rows []models.FeatureRow, profiles []Profile) ([]*models.BacktestReport, error) {
	scored, err := e.Score(ctx, symbol, rows)
	if err != nil {
		return nil, err
	}
	reports := make([]*models.BacktestReport, 0, len(profiles))
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep, err := e.Simulate(scored, p)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// Simulate runs the fully-invested-or-fully-cash state machine for one
// profile. A buy is taken only from cash; otherwise a sell is taken only
// from a position. An open position at the end stays unliquidated.
func (e *Engine) Simulate(s *Scored, p Profile) (*models.BacktestReport, error) {
	if s == nil || len(s.Rows) == 0 {
		return nil, models.ErrNoValidData
	}
	capital := e.opts.InitialCapital
	pf := models.Portfolio{Cash: capital}
	baselineShares := capital / s.Rows[0].Close

	var (
		entered  int
		openDate time.Time
		openCost float64
		openPx   float64
		trades   []models.TradeRecord
		curve    = make([]models.EquityPoint, 0, len(s.Rows))
	)
	for _, r := range s.Rows {
		switch {
		case p.Buy(r.Score, r.Risk) && pf.Cash > 0:
			openCost = pf.Cash
			pf.Shares = pf.Cash / r.Close
			pf.Cash = 0
			openDate, openPx = r.Date, r.Close
			entered++
		case p.Sell(r.Score, r.Risk) && pf.Shares > 0:
			exit := pf.Shares * r.Close
			pf.Cash = exit
			pf.Shares = 0
			trades = append(trades, models.TradeRecord{
				EntryDate:   openDate,
				EntryPrice:  openPx,
				ExitDate:    r.Date,
				ExitPrice:   r.Close,
				ReturnPct:   (exit - openCost) / openCost,
				HoldingDays: holdingDays(openDate, r.Date),
			})
		}
		if pf.Cash > 0 && pf.Shares > 0 {
			return nil, fmt.Errorf("%s/%s: portfolio partially invested on %s", s.Symbol, p.Name, r.Date.Format("2006-01-02"))
		}
		curve = append(curve, models.EquityPoint{
			Date:     r.Date,
			Strategy: pf.Value(r.Close),
			Baseline: baselineShares * r.Close,
			Score:    r.Score,
		})
	}

	rep := &models.BacktestReport{
		Symbol:          s.Symbol,
		Profile:         p.Name,
		InitialCapital:  capital,
		TotalTrades:     entered,
		OpenPosition:    pf.Invested(),
		MissingFeatures: s.Missing,
		From:            s.Rows[0].Date,
		To:              s.Rows[len(s.Rows)-1].Date,
		Trades:          trades,
		Curve:           curve,
	}
	summarize(rep)
	return rep, nil
}

func (e *Engine) window(rows []models.FeatureRow) []models.FeatureRow {
	if e.opts.LookbackDays <= 0 || len(rows) == 0 {
		return rows
	}
	cutoff := rows[len(rows)-1].Date.AddDate(0, 0, -e.opts.LookbackDays)
	i := sort.Search(len(rows), func(i int) bool { return !rows[i].Date.Before(cutoff) })
	return rows[i:]
}

func holdingDays(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / 24)
	return max(1, d)
}
