package models

import (
	"math"
	"sort"
	"strings"
	"time"
)

// FundamentalPrefix marks broadcast fundamental columns.
const FundamentalPrefix = "fund_"

// FeatureRow is a PricePoint extended with indicator columns and fundamentals.
type FeatureRow struct {
	Symbol string
	Date   time.Time

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	CloseMA5   float64
	CloseMA20  float64
	CloseMA21  float64
	CloseMA50  float64
	CloseMA200 float64
	CloseStd20 float64
	VolumeMA20 float64
	EMA9       float64
	EMA21      float64

	DailyReturn  float64
	Volatility21 float64
	Volatility30 float64
	RSI14        float64

	MACD       float64
	MACDSignal float64
	MACDHist   float64

	BollingerMid   float64
	BollingerUpper float64
	BollingerLower float64
	BollingerPct   float64

	Momentum10 float64

	// Fundamentals keyed by full column name (fund_<key>).
	Fundamentals map[string]float64
}

type column struct {
	name string
	ref  func(r *FeatureRow) *float64
}

var baseColumns = []column{
	{"open", func(r *FeatureRow) *float64 { return &r.Open }},
	{"high", func(r *FeatureRow) *float64 { return &r.High }},
	{"low", func(r *FeatureRow) *float64 { return &r.Low }},
	{"close", func(r *FeatureRow) *float64 { return &r.Close }},
	{"volume", func(r *FeatureRow) *float64 { return &r.Volume }},
	{"close_ma_5", func(r *FeatureRow) *float64 { return &r.CloseMA5 }},
	{"close_ma_20", func(r *FeatureRow) *float64 { return &r.CloseMA20 }},
	{"close_ma_21", func(r *FeatureRow) *float64 { return &r.CloseMA21 }},
	{"close_ma_50", func(r *FeatureRow) *float64 { return &r.CloseMA50 }},
	{"close_ma_200", func(r *FeatureRow) *float64 { return &r.CloseMA200 }},
	{"close_std_20", func(r *FeatureRow) *float64 { return &r.CloseStd20 }},
	{"volume_ma_20", func(r *FeatureRow) *float64 { return &r.VolumeMA20 }},
	{"ema_9", func(r *FeatureRow) *float64 { return &r.EMA9 }},
	{"ema_21", func(r *FeatureRow) *float64 { return &r.EMA21 }},
	{"daily_return", func(r *FeatureRow) *float64 { return &r.DailyReturn }},
	{"volatility_21", func(r *FeatureRow) *float64 { return &r.Volatility21 }},
	{"volatility_30", func(r *FeatureRow) *float64 { return &r.Volatility30 }},
	{"rsi_14", func(r *FeatureRow) *float64 { return &r.RSI14 }},
	{"macd", func(r *FeatureRow) *float64 { return &r.MACD }},
	{"macd_signal", func(r *FeatureRow) *float64 { return &r.MACDSignal }},
	{"macd_hist", func(r *FeatureRow) *float64 { return &r.MACDHist }},
	{"bb_mid", func(r *FeatureRow) *float64 { return &r.BollingerMid }},
	{"bb_upper", func(r *FeatureRow) *float64 { return &r.BollingerUpper }},
	{"bb_lower", func(r *FeatureRow) *float64 { return &r.BollingerLower }},
	{"bb_pct", func(r *FeatureRow) *float64 { return &r.BollingerPct }},
	{"momentum_10", func(r *FeatureRow) *float64 { return &r.Momentum10 }},
}

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(baseColumns))
	for i, c := range baseColumns {
		m[c.name] = i
	}
	return m
}()

// BaseColumns returns the ordered names of the non-fundamental numeric columns.
func BaseColumns() []string {
	out := make([]string, len(baseColumns))
	for i, c := range baseColumns {
		out[i] = c.name
	}
	return out
}

// IsBaseColumn reports whether name is a known indicator/price column.
func IsBaseColumn(name string) bool {
	_, ok := columnIndex[name]
	return ok
}

// Value returns the column value and whether the row carries that column.
func (r *FeatureRow) Value(name string) (float64, bool) {
	if i, ok := columnIndex[name]; ok {
		return *baseColumns[i].ref(r), true
	}
	if strings.HasPrefix(name, FundamentalPrefix) {
		v, ok := r.Fundamentals[name]
		return v, ok
	}
	return 0, false
}

// Set assigns a column value. Unknown non-fundamental names are ignored and
// reported as false.
func (r *FeatureRow) Set(name string, v float64) bool {
	if i, ok := columnIndex[name]; ok {
		*baseColumns[i].ref(r) = v
		return true
	}
	if strings.HasPrefix(name, FundamentalPrefix) {
		if r.Fundamentals == nil {
			r.Fundamentals = make(map[string]float64)
		}
		r.Fundamentals[name] = v
		return true
	}
	return false
}

// FundamentalColumns returns the sorted fundamental column names of the row.
func (r *FeatureRow) FundamentalColumns() []string {
	out := make([]string, 0, len(r.Fundamentals))
	for k := range r.Fundamentals {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FeatureDataset maps a symbol to its rows, ascending by date.
type FeatureDataset map[string][]FeatureRow

// Symbols returns the dataset symbols in lexical order.
func (d FeatureDataset) Symbols() []string {
	out := make([]string, 0, len(d))
	for s := range d {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of rows.
func (d FeatureDataset) Len() int {
	n := 0
	for _, rows := range d {
		n += len(rows)
	}
	return n
}

// FundamentalColumns returns the union of fundamental columns across all rows.
func (d FeatureDataset) FundamentalColumns() []string {
	seen := map[string]struct{}{}
	for _, rows := range d {
		for i := range rows {
			for k := range rows[i].Fundamentals {
				seen[k] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Latest returns the most recent row for symbol.
func (d FeatureDataset) Latest(symbol string) (FeatureRow, bool) {
	rows := d[symbol]
	if len(rows) == 0 {
		return FeatureRow{}, false
	}
	return rows[len(rows)-1], true
}

// SortRows sorts rows ascending by date and drops duplicated dates, keeping
// the last occurrence.
func SortRows(rows []FeatureRow) []FeatureRow {
	out := make([]FeatureRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	dedup := out[:0]
	for i := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Date.Equal(out[i].Date) {
			dedup[n-1] = out[i]
			continue
		}
		dedup = append(dedup, out[i])
	}
	return dedup
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
