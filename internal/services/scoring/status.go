package scoring

import "TazeAI/internal/domain/models"

type band struct {
	lower, upper float64 // [lower, upper)
	status       models.SignalStatus
}

// Evaluated top to bottom; the last band is closed at MaxScore.
var statusBands = []band{
	{0, 5, models.SignalStatus{Status: models.StatusNeutral, Message: "Aguardar. Sem vantagem clara no momento.", Emoji: "⚪"}},
	{5, 6, models.SignalStatus{Status: models.StatusRadar, Message: "No radar. Acompanhar de perto.", Emoji: "🟡"}},
	{6, MaxScore, models.SignalStatus{Status: models.StatusBuy, Message: "Oportunidade de compra para longo prazo.", Emoji: "🟢"}},
}

var neutral = statusBands[0].status

// StatusForScore maps a score to its signal; scores outside [0,10] are NEUTRO.
func StatusForScore(score float64) models.SignalStatus {
	last := len(statusBands) - 1
	for i, b := range statusBands {
		if score >= b.lower && (score < b.upper || (i == last && score <= b.upper)) {
			return b.status
		}
	}
	return neutral
}

// DegradedStatus is reported when no model is available to score a symbol.
func DegradedStatus() models.SignalStatus {
	s := neutral
	s.Message = "Modelo indisponível. Exibindo apenas dados de mercado."
	return s
}
