package features

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"TazeAI/internal/domain/models"
	"TazeAI/pkg/util"
)

// ParseHistory decodes the histories envelope into price points. Items
// without a parseable date are skipped; open/high/low default to close.
// The result is not normalized.
func ParseHistory(env *models.Envelope) ([]models.PricePoint, error) {
	if !env.HasData() {
		return nil, nil
	}
	var items []map[string]any
	if err := json.Unmarshal(env.Data, &items); err != nil {
		// some responses wrap the series in an object
		var wrapped map[string]json.RawMessage
		if err2 := json.Unmarshal(env.Data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode histories: %w", err)
		}
		for _, key := range []string{"histories", "history", "prices"} {
			if raw, ok := wrapped[key]; ok {
				if err := json.Unmarshal(raw, &items); err != nil {
					return nil, fmt.Errorf("decode histories.%s: %w", key, err)
				}
				break
			}
		}
	}
	out := make([]models.PricePoint, 0, len(items))
	for _, item := range items {
		date, ok := itemDate(item)
		if !ok {
			continue
		}
		closeVal := pickFloat(item, "close", "price_close")
		p := models.PricePoint{
			Date:   date,
			Close:  closeVal,
			Open:   pickFloatDefault(item, closeVal, "open", "price_open"),
			High:   pickFloatDefault(item, closeVal, "high", "price_high"),
			Low:    pickFloatDefault(item, closeVal, "low", "price_low"),
			Volume: pickFloat(item, "volume"),
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseMetadata extracts descriptive fields from the info envelope.
func ParseMetadata(env *models.Envelope) *models.StockMetadata {
	obj := firstObject(env)
	if obj == nil {
		return nil
	}
	m := models.StockMetadata{
		Name:           pickString(obj, "name", "company_name", "long_name", "short_name"),
		Sector:         pickString(obj, "sector", "sector_name"),
		Segment:        pickString(obj, "segment", "subsector"),
		DocumentNumber: pickString(obj, "document_number", "cnpj"),
		Homepage:       pickString(obj, "homepage", "website"),
		Logo:           pickString(obj, "logo", "logo_url"),
	}
	if m.IsZero() {
		return nil
	}
	return &m
}

// ParseIntraday extracts the most recent intraday quote. A snapshot without a
// positive price is discarded.
func ParseIntraday(env *models.Envelope) *models.IntradaySnapshot {
	obj := lastObject(env)
	if obj == nil {
		return nil
	}
	s := models.IntradaySnapshot{
		Open:    pickFloat(obj, "open", "price_open"),
		High:    pickFloat(obj, "high", "price_high"),
		Low:     pickFloat(obj, "low", "price_low"),
		Close:   pickFloat(obj, "close", "price_close"),
		Volume:  pickFloat(obj, "volume"),
		Change:  pickFloat(obj, "change"),
		Percent: pickFloat(obj, "percent", "change_percent"),
	}
	s.Price = pickFloatDefault(obj, s.Close, "price", "last", "last_price")
	if t, ok := util.ParseTime(pickString(obj, "time", "date", "updated_at", "price_date")); ok {
		s.Time = t.UTC()
	}
	if s.Price <= 0 {
		return nil
	}
	return &s
}

func itemDate(item map[string]any) (time.Time, bool) {
	for _, key := range []string{"price_date", "date", "datetime", "time"} {
		switch v := item[key].(type) {
		case string:
			if t, ok := util.ParseTime(v); ok {
				return models.TruncateDay(t), true
			}
		case float64:
			if t, ok := util.ParseTime(fmt.Sprintf("%.0f", v)); ok {
				return models.TruncateDay(t), true
			}
		}
	}
	return time.Time{}, false
}

func pickFloat(item map[string]any, keys ...string) float64 {
	return pickFloatDefault(item, 0, keys...)
}

func pickFloatDefault(item map[string]any, def float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := toFloat(item[k]); ok && v != 0 {
			return v
		}
	}
	return def
}

func pickString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := item[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
