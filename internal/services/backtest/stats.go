package backtest

import "TazeAI/internal/domain/models"

// summarize fills the report's final values, returns and trade statistics
// from its curve and trades.
func summarize(rep *models.BacktestReport) {
	if n := len(rep.Curve); n > 0 {
		last := rep.Curve[n-1]
		rep.FinalStrategyValue = last.Strategy
		rep.FinalBaselineValue = last.Baseline
	}
	rep.StrategyReturnPct = (rep.FinalStrategyValue/rep.InitialCapital - 1) * 100
	rep.BaselineReturnPct = (rep.FinalBaselineValue/rep.InitialCapital - 1) * 100
	rep.Alpha = rep.StrategyReturnPct - rep.BaselineReturnPct
	rep.MaxDrawdownPct = MaxDrawdownPct(rep.Curve)

	var sumRet, sumDays float64
	for _, t := range rep.Trades {
		if t.ReturnPct > 0 {
			rep.WinningTrades++
		}
		sumRet += t.ReturnPct
		sumDays += float64(t.HoldingDays)
	}
	if rep.TotalTrades > 0 {
		rep.WinRate = float64(rep.WinningTrades) / float64(rep.TotalTrades)
	}
	if n := len(rep.Trades); n > 0 {
		rep.AvgTradeReturn = sumRet / float64(n)
		rep.AvgHoldingDays = sumDays / float64(n)
	}
}

// MaxDrawdownPct is the largest peak-to-trough fall of the strategy curve, in percent.
func MaxDrawdownPct(curve []models.EquityPoint) float64 {
	peak, worst := 0.0, 0.0
	for _, p := range curve {
		if p.Strategy > peak {
			peak = p.Strategy
		}
		if peak > 0 {
			if dd := (peak - p.Strategy) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst * 100
}

// Summaries averages alpha per profile across reports, in profile order.
func Summaries(reports []*models.BacktestReport, profiles []Profile) []models.ProfileSummary {
	byName := make(map[string]*models.ProfileSummary, len(profiles))
	out := make([]models.ProfileSummary, len(profiles))
	for i, p := range profiles {
		out[i].Profile = p.Name
		byName[p.Name] = &out[i]
	}
	for _, r := range reports {
		s, ok := byName[r.Profile]
		if !ok {
			continue
		}
		s.Symbols++
		s.AvgAlpha += r.Alpha
		if r.Alpha > 0 {
			s.Beating++
		}
	}
	for i := range out {
		if out[i].Symbols > 0 {
			out[i].AvgAlpha /= float64(out[i].Symbols)
		}
	}
	return out
}
