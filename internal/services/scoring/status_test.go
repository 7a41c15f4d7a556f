package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"TazeAI/internal/domain/models"
)

func TestStatusForScoreBands(t *testing.T) {
	cases := []struct {
		score float64
		want  models.Status
	}{
		{0, models.StatusNeutral},
		{4.999, models.StatusNeutral},
		{5, models.StatusRadar},
		{5.999, models.StatusRadar},
		{6, models.StatusBuy},
		{10, models.StatusBuy},
		{-1, models.StatusNeutral},
		{10.5, models.StatusNeutral},
		{math.NaN(), models.StatusNeutral},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, StatusForScore(tc.score).Status, "score=%v", tc.score)
	}
}

func TestStatusForScoreTotalOnDomain(t *testing.T) {
	for s := 0.0; s <= 10.0; s += 0.001 {
		matches := 0
		for i, b := range statusBands {
			if s >= b.lower && (s < b.upper || (i == len(statusBands)-1 && s <= b.upper)) {
				matches++
			}
		}
		assert.Equalf(t, 1, matches, "score %v must fall in exactly one band", s)
	}
}

func TestStatusMessages(t *testing.T) {
	buy := StatusForScore(8)
	assert.NotEmpty(t, buy.Message)
	assert.Equal(t, "🟢", buy.Emoji)
	assert.Equal(t, models.StatusNeutral, DegradedStatus().Status)
	assert.NotEqual(t, StatusForScore(1).Message, DegradedStatus().Message)
}
