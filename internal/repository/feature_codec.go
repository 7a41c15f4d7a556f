package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"TazeAI/internal/domain/models"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = "20060102T150405.000000000Z"
)

// snapshotStamp formats t as the sortable UTC stamp used in snapshot names.
func snapshotStamp(t time.Time) string { return t.UTC().Format(stampLayout) }

// tableSymbol returns the single upper-cased symbol of rows.
func tableSymbol(rows []models.FeatureRow) (string, error) {
	if len(rows) == 0 {
		return "", models.ErrEmptyDataset
	}
	symbol := strings.ToUpper(strings.TrimSpace(rows[0].Symbol))
	if symbol == "" {
		return "", fmt.Errorf("feature table: empty symbol")
	}
	for i := range rows {
		if !strings.EqualFold(rows[i].Symbol, symbol) {
			return "", fmt.Errorf("feature table: mixed symbols %s and %s", symbol, rows[i].Symbol)
		}
	}
	return symbol, nil
}

// tableColumns is the CSV header of rows: identity, base columns, then
// their fundamental columns sorted.
func tableColumns(rows []models.FeatureRow) []string {
	seen := map[string]struct{}{}
	for i := range rows {
		for k := range rows[i].Fundamentals {
			seen[k] = struct{}{}
		}
	}
	funds := make([]string, 0, len(seen))
	for k := range seen {
		funds = append(funds, k)
	}
	sort.Strings(funds)
	cols := append([]string{"symbol", "date"}, models.BaseColumns()...)
	return append(cols, funds...)
}

func formatCell(v float64, ok bool) string {
	if !ok || math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func encodeRecord(row *models.FeatureRow, cols []string) []string {
	rec := make([]string, len(cols))
	for i, c := range cols {
		switch c {
		case "symbol":
			rec[i] = strings.ToUpper(row.Symbol)
		case "date":
			rec[i] = row.Date.Format(dateLayout)
		default:
			rec[i] = formatCell(row.Value(c))
		}
	}
	return rec
}

// decodeRecord is the inverse of encodeRecord. Empty cells become NaN and
// unknown non-fundamental columns are ignored.
func decodeRecord(header, rec []string) (models.FeatureRow, error) {
	var row models.FeatureRow
	for i, c := range header {
		if i >= len(rec) {
			break
		}
		cell := strings.TrimSpace(rec[i])
		switch c {
		case "symbol":
			row.Symbol = strings.ToUpper(cell)
		case "date":
			d, err := time.Parse(dateLayout, cell)
			if err != nil {
				return row, fmt.Errorf("date %q: %w", cell, err)
			}
			row.Date = d
		default:
			if cell == "" && strings.HasPrefix(c, models.FundamentalPrefix) {
				continue
			}
			v := math.NaN()
			if cell != "" {
				f, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return row, fmt.Errorf("column %s: %w", c, err)
				}
				v = f
			}
			row.Set(c, v)
		}
	}
	if row.Symbol == "" || row.Date.IsZero() {
		return row, fmt.Errorf("record without symbol or date")
	}
	return row, nil
}

// encodeFeatures serializes the numeric columns of row to a JSON object.
// Non-finite values are omitted.
func encodeFeatures(row *models.FeatureRow) (string, error) {
	m := make(map[string]float64, len(models.BaseColumns())+len(row.Fundamentals))
	for _, c := range append(models.BaseColumns(), row.FundamentalColumns()...) {
		if v, ok := row.Value(c); ok && models.IsFinite(v) {
			m[c] = v
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeFeatures fills row from a JSON object; absent base columns are NaN.
func decodeFeatures(row *models.FeatureRow, payload string) error {
	var m map[string]float64
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return err
	}
	for _, c := range models.BaseColumns() {
		row.Set(c, math.NaN())
	}
	for k, v := range m {
		row.Set(k, v)
	}
	return nil
}
