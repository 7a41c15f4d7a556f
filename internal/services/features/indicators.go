package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Indicator functions operate on a chronologically ordered series for one
// symbol. Output slices have the input length; undefined positions are NaN.
// Every value at index i depends on values[0..i] only.

// SMA computes the trailing arithmetic mean over window values. Positions with
// fewer than minPeriods observations are NaN; minPeriods <= 0 means window.
func SMA(values []float64, window, minPeriods int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	if minPeriods <= 0 || minPeriods > window {
		minPeriods = window
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := min(i+1, window)
		if n >= minPeriods {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// RollingStd computes the trailing sample standard deviation (ddof=1).
// A window holding a single observation is NaN.
func RollingStd(values []float64, window, minPeriods int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	if minPeriods <= 0 || minPeriods > window {
		minPeriods = window
	}
	for i := range values {
		start := max(0, i-window+1)
		n := i - start + 1
		if n < minPeriods || n < 2 {
			continue
		}
		out[i] = stat.StdDev(values[start:i+1], nil)
	}
	return out
}

// EMA computes the recursive exponential moving average with
// alpha = 2/(span+1), seeded with the first value.
func EMA(values []float64, span int) []float64 {
	out := nanSlice(len(values))
	if len(values) == 0 || span <= 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// PctChange returns values[i]/values[i-periods] - 1.
func PctChange(values []float64, periods int) []float64 {
	out := nanSlice(len(values))
	if periods <= 0 {
		return out
	}
	for i := periods; i < len(values); i++ {
		prev := values[i-periods]
		if prev == 0 {
			continue
		}
		out[i] = values[i]/prev - 1
	}
	return out
}

// DailyReturns is PctChange(closes, 1) with the first position set to 0.
func DailyReturns(closes []float64) []float64 {
	out := PctChange(closes, 1)
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = 0
		}
	}
	return out
}

// Volatility is the rolling sample standard deviation of daily returns.
// It is defined from index window-1 on.
func Volatility(closes []float64, window int) []float64 {
	return RollingStd(DailyReturns(closes), window, window)
}

// RSI computes the simple-average relative strength index over period deltas.
// Positions without period deltas of history are NaN. A window with no losses
// yields 100, and a window with neither gains nor losses yields 50.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 {
		return out
	}
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	var sumGain, sumLoss float64
	for i := 1; i < len(closes); i++ {
		sumGain += gains[i]
		sumLoss += losses[i]
		if i > period {
			sumGain -= gains[i-period]
			sumLoss -= losses[i-period]
		}
		if i < period {
			continue
		}
		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)
		switch {
		case avgLoss <= 1e-12 && avgGain <= 1e-12:
			out[i] = 50
		case avgLoss <= 1e-12:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// MACDSeries holds the MACD line, its signal line and the histogram.
type MACDSeries struct {
	Line   []float64
	Signal []float64
	Hist   []float64
}

// MACD computes EMA(12) - EMA(26), its EMA(9) signal and the difference.
func MACD(closes []float64) MACDSeries {
	fast := EMA(closes, 12)
	slow := EMA(closes, 26)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := EMA(line, 9)
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - signal[i]
	}
	return MACDSeries{Line: line, Signal: signal, Hist: hist}
}

// Bands holds Bollinger mid, upper and lower bands and the percent-band.
type Bands struct {
	Mid   []float64
	Upper []float64
	Lower []float64
	Pct   []float64
}

// Bollinger computes bands around SMA(period) at k rolling standard
// deviations. Pct is NaN where upper == lower.
func Bollinger(closes []float64, period int, k float64) Bands {
	mid := SMA(closes, period, period)
	std := RollingStd(closes, period, period)
	return bandsFrom(closes, mid, std, k)
}

func bandsFrom(closes, mid, std []float64, k float64) Bands {
	b := Bands{
		Mid:   mid,
		Upper: nanSlice(len(closes)),
		Lower: nanSlice(len(closes)),
		Pct:   nanSlice(len(closes)),
	}
	for i := range closes {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			continue
		}
		b.Upper[i] = mid[i] + k*std[i]
		b.Lower[i] = mid[i] - k*std[i]
		if width := b.Upper[i] - b.Lower[i]; width > 0 {
			b.Pct[i] = (closes[i] - b.Lower[i]) / width
		}
	}
	return b
}

// Momentum is the percentage change of close versus window rows prior.
func Momentum(closes []float64, window int) []float64 {
	return PctChange(closes, window)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func fillNaN(values []float64, v float64) []float64 {
	for i := range values {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			values[i] = v
		}
	}
	return values
}
