package models

import (
	"sort"
	"time"
)

// PricePoint represents one daily OHLCV session for a symbol.
type PricePoint struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Valid reports whether the point can take part in any computation.
func (p PricePoint) Valid() bool { return p.Close > 0 }

// NormalizeSeries drops points with non-positive close, sorts by date and
// keeps the last point seen for a duplicated date.
func NormalizeSeries(points []PricePoint) []PricePoint {
	byDate := make(map[time.Time]int, len(points))
	out := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		d := TruncateDay(p.Date)
		p.Date = d
		if idx, ok := byDate[d]; ok {
			out[idx] = p
			continue
		}
		byDate[d] = len(out)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// TruncateDay returns the calendar date of t in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
