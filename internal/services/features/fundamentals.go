package features

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"TazeAI/internal/domain/models"
)

var numberReplacer = strings.NewReplacer("R$", "", "%", "", " ", "", "\u00a0", "")

// ParseLocaleNumber parses provider numbers written in Brazilian or US
// formatting ("1.234,56", "12,5%", "R$ 3,20", "1,234.56"). When both
// separators appear, the rightmost one is the decimal separator. A lone dot
// is a decimal point ("37.125" is 37.125); fundamentals use
// ParseFundamentalNumber instead.
func ParseLocaleNumber(s string) (float64, bool) {
	return parseNumber(s, false)
}

// ParseFundamentalNumber is ParseLocaleNumber for fundamentals, which the
// provider writes in Brazilian formatting: a lone dot followed by exactly
// three digits after a non-zero integer part is a thousands separator
// ("1.234" is 1234, "0.750" is 0.75, "12.5" is 12.5).
func ParseFundamentalNumber(s string) (float64, bool) {
	return parseNumber(s, true)
}

func parseNumber(s string, groupThousands bool) (float64, bool) {
	s = numberReplacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "-" {
		return 0, false
	}
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return 0, false
		}
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1 || groupThousands && thousandsGrouped(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v := d.InexactFloat64()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// thousandsGrouped reports whether s has the shape [-]d{1,3}.ddd with no
// leading zero.
func thousandsGrouped(s string) bool {
	intPart, frac, ok := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if !ok || len(frac) != 3 || len(intPart) == 0 || len(intPart) > 3 || intPart[0] == '0' {
		return false
	}
	return allDigits(intPart) && allDigits(frac)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// toFloat accepts JSON numbers and parseable strings.
func toFloat(v any) (float64, bool) {
	return toFloatWith(v, ParseLocaleNumber)
}

func toFloatWith(v any, parse func(string) (float64, bool)) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, models.IsFinite(x)
	case json.Number:
		f, err := x.Float64()
		return f, err == nil && models.IsFinite(f)
	case string:
		return parse(x)
	case bool, nil:
		return 0, false
	default:
		return 0, false
	}
}

// ParseFundamentals flattens the fundamentals envelope into fund_<key>
// columns. The payload may be an object or an array whose first element is
// used. Non-numeric values are skipped.
func ParseFundamentals(env *models.Envelope) map[string]float64 {
	obj := firstObject(env)
	if len(obj) == 0 {
		return nil
	}
	out := make(map[string]float64, len(obj))
	for k, v := range obj {
		f, ok := toFloatWith(v, ParseFundamentalNumber)
		if !ok {
			continue
		}
		out[models.FundamentalPrefix+k] = f
	}
	return out
}

// firstObject decodes env.data as an object, or the first object of an array.
func firstObject(env *models.Envelope) map[string]any {
	if !env.HasData() {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(env.Data, &obj); err == nil {
		return obj
	}
	var arr []map[string]any
	if err := json.Unmarshal(env.Data, &arr); err == nil && len(arr) > 0 {
		return arr[0]
	}
	return nil
}

// lastObject is like firstObject but takes the final array element.
func lastObject(env *models.Envelope) map[string]any {
	if !env.HasData() {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(env.Data, &obj); err == nil {
		return obj
	}
	var arr []map[string]any
	if err := json.Unmarshal(env.Data, &arr); err == nil && len(arr) > 0 {
		return arr[len(arr)-1]
	}
	return nil
}
