package indicator

import (
	"math"

	"stock-intelligence/internal/market"
)

// ============================================================================
// MOVING AVERAGES
// ============================================================================

// CalculateEMASeries calculates the full EMA series over closes, seeded with
// the first close (recursive smoothing, multiplier 2/(span+1))
func CalculateEMASeries(candles []market.Candle, span int) []float64 {
	if len(candles) == 0 {
		return nil
	}

	multiplier := 2.0 / float64(span+1)
	out := make([]float64, len(candles))
	out[0] = candles[0].Close

	for i := 1; i < len(candles); i++ {
		out[i] = candles[i].Close*multiplier + out[i-1]*(1-multiplier)
	}

	return out
}

// CalculateEMA calculates Exponential Moving Average (latest value)
func CalculateEMA(candles []market.Candle, span int) float64 {
	series := CalculateEMASeries(candles, span)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// ============================================================================
// RSI (Relative Strength Index)
// ============================================================================

// CalculateRSISeries calculates the full Wilder RSI series. Gains and losses
// are smoothed recursively with alpha = 1/period; the first period-1 entries
// are NaN while the averages warm up.
func CalculateRSISeries(candles []market.Candle, period int) []float64 {
	n := len(candles)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	alpha := 1.0 / float64(period)

	// First delta is undefined so both gain and loss start at zero
	avgGain, avgLoss := 0.0, 0.0
	for i := 0; i < n; i++ {
		if i > 0 {
			gain, loss := 0.0, 0.0
			delta := candles[i].Close - candles[i-1].Close
			if delta > 0 {
				gain = delta
			} else if delta < 0 {
				loss = -delta
			}
			avgGain = avgGain*(1-alpha) + gain*alpha
			avgLoss = avgLoss*(1-alpha) + loss*alpha
		}

		if i < period-1 {
			out[i] = math.NaN()
			continue
		}

		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = math.NaN()
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - (100 / (1 + rs))
		}
	}

	return out
}

// CalculateRSI calculates the latest Wilder RSI value, defaulting to 50 when
// the series has not warmed up yet
func CalculateRSI(candles []market.Candle, period int) float64 {
	series := CalculateRSISeries(candles, period)
	if len(series) == 0 {
		return 50.0
	}
	latest := series[len(series)-1]
	if math.IsNaN(latest) {
		return 50.0
	}
	return latest
}

// ============================================================================
// VWAP (Volume Weighted Average Price)
// ============================================================================

// CalculateVWAP calculates the cumulative volume-weighted average price over
// the whole session window. Falls back to the latest close when no volume
// was reported (index data often carries zero volume).
func CalculateVWAP(candles []market.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}

	var totalVolume int64
	for _, c := range candles {
		totalVolume += c.Volume
	}
	if totalVolume == 0 {
		return candles[len(candles)-1].Close
	}

	var cumTPVol, cumVol float64
	for _, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3
		cumTPVol += typical * float64(c.Volume)
		cumVol += float64(c.Volume)
	}

	return cumTPVol / cumVol
}

// ============================================================================
// BOLLINGER BANDS
// ============================================================================

// CalculateBollinger calculates Bollinger Bands (upper, middle, lower) from
// an SMA plus/minus stdDev sample standard deviations. With fewer candles
// than the period the bands collapse to the latest close.
func CalculateBollinger(candles []market.Candle, period int, stdDev float64) (float64, float64, float64) {
	if len(candles) == 0 {
		return 0, 0, 0
	}
	if len(candles) < period {
		p := candles[len(candles)-1].Close
		return p, p, p
	}

	window := candles[len(candles)-period:]
	sum := 0.0
	for _, c := range window {
		sum += c.Close
	}
	sma := sum / float64(period)

	variance := 0.0
	for _, c := range window {
		d := c.Close - sma
		variance += d * d
	}
	// Sample standard deviation (n-1)
	std := math.Sqrt(variance / float64(period-1))

	return sma + stdDev*std, sma, sma - stdDev*std
}

// ============================================================================
// MACD (Moving Average Convergence Divergence)
// ============================================================================

// MACDResult holds MACD indicator values
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD calculates MACD (12/26), signal line (EMA9 of MACD) and
// histogram
func CalculateMACD(candles []market.Candle) MACDResult {
	if len(candles) == 0 {
		return MACDResult{}
	}

	ema12 := CalculateEMASeries(candles, 12)
	ema26 := CalculateEMASeries(candles, 26)

	macdLine := make([]float64, len(candles))
	for i := range candles {
		macdLine[i] = ema12[i] - ema26[i]
	}

	signal := emaOverSeries(macdLine, 9)
	last := len(candles) - 1

	return MACDResult{
		MACD:      macdLine[last],
		Signal:    signal[last],
		Histogram: macdLine[last] - signal[last],
	}
}

// emaOverSeries applies recursive EMA smoothing to an arbitrary series
func emaOverSeries(values []float64, span int) []float64 {
	if len(values) == 0 {
		return nil
	}

	multiplier := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = values[i]*multiplier + out[i-1]*(1-multiplier)
	}

	return out
}
