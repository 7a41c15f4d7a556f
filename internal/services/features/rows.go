package features

import (
	"fmt"
	"maps"
	"strings"

	"TazeAI/internal/domain/models"
)

// Window sizes of the engineered columns.
const (
	RSIPeriod        = 14
	BollingerPeriod  = 20
	BollingerK       = 2.0
	MomentumWindow   = 10
	ShortVolWindow   = 21
	LongVolWindow    = 30
	neutralRSI       = 50.0
	neutralBandPct   = 0.5
	relaxedMinPeriod = 1
)

// ComputeFeatureRows is the single feature builder shared by ingestion,
// training, backtest and inference. Points are filtered to close > 0,
// normalized by date and extended with indicators; fundamentals are broadcast
// onto every row.
//
// Fill policy for rows without enough history: moving averages use a relaxed
// minimum of one period, standard deviations and volatility become 0, RSI
// becomes 50, the Bollinger percent-band becomes 0.5 and momentum becomes 0.
func ComputeFeatureRows(symbol string, points []models.PricePoint, fundamentals map[string]float64) []models.FeatureRow {
	series := models.NormalizeSeries(points)
	n := len(series)
	if n == 0 {
		return nil
	}
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, p := range series {
		closes[i] = p.Close
		volumes[i] = p.Volume
	}

	ma5 := SMA(closes, 5, relaxedMinPeriod)
	ma20 := SMA(closes, 20, relaxedMinPeriod)
	ma21 := SMA(closes, 21, relaxedMinPeriod)
	ma50 := SMA(closes, 50, relaxedMinPeriod)
	ma200 := SMA(closes, 200, relaxedMinPeriod)
	std20 := fillNaN(RollingStd(closes, BollingerPeriod, relaxedMinPeriod), 0)
	volMA20 := SMA(volumes, 20, relaxedMinPeriod)
	ema9 := EMA(closes, 9)
	ema21 := EMA(closes, 21)
	returns := DailyReturns(closes)
	vol21 := fillNaN(Volatility(closes, ShortVolWindow), 0)
	vol30 := fillNaN(Volatility(closes, LongVolWindow), 0)
	rsi := fillNaN(RSI(closes, RSIPeriod), neutralRSI)
	macd := MACD(closes)
	bands := bandsFrom(closes, ma20, std20, BollingerK)
	bandPct := fillNaN(bands.Pct, neutralBandPct)
	momentum := fillNaN(Momentum(closes, MomentumWindow), 0)

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	rows := make([]models.FeatureRow, n)
	for i, p := range series {
		rows[i] = models.FeatureRow{
			Symbol:         symbol,
			Date:           p.Date,
			Open:           p.Open,
			High:           p.High,
			Low:            p.Low,
			Close:          p.Close,
			Volume:         p.Volume,
			CloseMA5:       ma5[i],
			CloseMA20:      ma20[i],
			CloseMA21:      ma21[i],
			CloseMA50:      ma50[i],
			CloseMA200:     ma200[i],
			CloseStd20:     std20[i],
			VolumeMA20:     volMA20[i],
			EMA9:           ema9[i],
			EMA21:          ema21[i],
			DailyReturn:    returns[i],
			Volatility21:   vol21[i],
			Volatility30:   vol30[i],
			RSI14:          rsi[i],
			MACD:           macd.Line[i],
			MACDSignal:     macd.Signal[i],
			MACDHist:       macd.Hist[i],
			BollingerMid:   bands.Mid[i],
			BollingerUpper: bands.Upper[i],
			BollingerLower: bands.Lower[i],
			BollingerPct:   bandPct[i],
			Momentum10:     momentum[i],
		}
		if len(fundamentals) > 0 {
			rows[i].Fundamentals = maps.Clone(fundamentals)
		}
	}
	return rows
}

// BundleToFeatureRows converts a raw provider bundle into feature rows. An
// empty result means the bundle has no usable history; callers skip the
// symbol. An error is returned only for a malformed history payload.
func BundleToFeatureRows(bundle *models.ProviderBundle) ([]models.FeatureRow, error) {
	if bundle == nil {
		return nil, nil
	}
	points, err := ParseHistory(bundle.Histories)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bundle.Symbol, err)
	}
	return ComputeFeatureRows(bundle.Symbol, points, ParseFundamentals(bundle.Fundamentals)), nil
}
