package features

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TazeAI/internal/domain/models"
)

func TestParseLocaleNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.234,56", 1234.56, true},
		{"12,5%", 12.5, true},
		{"R$ 3,20", 3.2, true},
		{"1,234.56", 1234.56, true},
		{"1.234.567", 1234567, true},
		{"0.75", 0.75, true},
		{"37.125", 37.125, true},
		{"-4,1", -4.1, true},
		{"", 0, false},
		{"-", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseLocaleNumber(tc.in)
		assert.Equalf(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.InDeltaf(t, tc.want, got, 1e-9, "input %q", tc.in)
		}
	}
}

func TestParseFundamentalNumberGroupsThousands(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.234", 1234},
		{"-12.500", -12500},
		{"R$ 999.999", 999999},
		{"0.750", 0.75},
		{"12.5", 12.5},
		{"1234.567", 1234.567},
		{"1.234,5", 1234.5},
	}
	for _, tc := range cases {
		got, ok := ParseFundamentalNumber(tc.in)
		require.Truef(t, ok, "input %q", tc.in)
		assert.InDeltaf(t, tc.want, got, 1e-9, "input %q", tc.in)
	}
}

func TestParseFundamentals(t *testing.T) {
	obj := &models.Envelope{Data: json.RawMessage(`{"pl":"8,5","dy":"6,2%","roe":12.1,"lpa":"1.234","sector":"Energia"}`)}
	got := ParseFundamentals(obj)
	require.Len(t, got, 4)
	assert.InDelta(t, 1234.0, got["fund_lpa"], 1e-9)
	assert.InDelta(t, 8.5, got["fund_pl"], 1e-9)
	assert.InDelta(t, 6.2, got["fund_dy"], 1e-9)
	assert.InDelta(t, 12.1, got["fund_roe"], 1e-9)

	arr := &models.Envelope{Data: json.RawMessage(`[{"pl":1},{"pl":2}]`)}
	assert.Equal(t, map[string]float64{"fund_pl": 1}, ParseFundamentals(arr))

	assert.Nil(t, ParseFundamentals(nil))
	assert.Nil(t, ParseFundamentals(&models.Envelope{Data: json.RawMessage(`null`)}))
}
