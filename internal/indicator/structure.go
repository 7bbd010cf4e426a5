package indicator

import (
	"math"
	"time"

	"stock-intelligence/internal/market"
)

// ============================================================================
// SWING / STRUCTURE DETECTION
// ============================================================================

// DetectSwings detects market structure from swing points: higher highs plus
// higher lows read Bullish, lower highs plus lower lows read Bearish,
// anything mixed reads Sideways. A swing is a bar matching the extreme of a
// centered window of 2*lookback+1 candles.
func DetectSwings(candles []market.Candle, lookback int) string {
	if lookback <= 0 {
		lookback = 3
	}
	if len(candles) < lookback*3 {
		return "Sideways"
	}

	var swingHighs, swingLows []float64
	for i := lookback; i < len(candles)-lookback; i++ {
		windowHigh := candles[i].High
		windowLow := candles[i].Low
		for j := i - lookback; j <= i+lookback; j++ {
			if candles[j].High > windowHigh {
				windowHigh = candles[j].High
			}
			if candles[j].Low < windowLow {
				windowLow = candles[j].Low
			}
		}
		if candles[i].High == windowHigh {
			swingHighs = append(swingHighs, candles[i].High)
		}
		if candles[i].Low == windowLow {
			swingLows = append(swingLows, candles[i].Low)
		}
	}

	swingHighs = tail(swingHighs, 4)
	swingLows = tail(swingLows, 4)
	if len(swingHighs) < 2 || len(swingLows) < 2 {
		return "Sideways"
	}

	hh := nonDecreasing(swingHighs)
	hl := nonDecreasing(swingLows)
	lh := nonIncreasing(swingHighs)
	ll := nonIncreasing(swingLows)

	if hh && hl {
		return "Bullish"
	}
	if lh && ll {
		return "Bearish"
	}
	return "Sideways"
}

func tail(values []float64, n int) []float64 {
	if len(values) > n {
		return values[len(values)-n:]
	}
	return values
}

func nonDecreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return false
		}
	}
	return true
}

func nonIncreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] > values[i-1] {
			return false
		}
	}
	return true
}

// ============================================================================
// RSI DIVERGENCE
// ============================================================================

// Divergence flags RSI divergence against price
type Divergence struct {
	Bearish bool `json:"bearish_div"`
	Bullish bool `json:"bullish_div"`
}

// DetectDivergence compares price extremes against RSI extremes over the last
// `lookback` candles, split into two halves. A higher price high with a lower
// RSI high is bearish divergence; a lower price low with a higher RSI low is
// bullish. RSI warm-up values are skipped.
func DetectDivergence(candles []market.Candle, lookback int) Divergence {
	var result Divergence
	if lookback <= 0 {
		lookback = 20
	}
	if len(candles) < lookback+5 {
		return result
	}

	recent := candles[len(candles)-lookback:]
	rsiFull := CalculateRSISeries(candles, 14)
	rsi := rsiFull[len(rsiFull)-lookback:]

	mid := lookback / 2
	firstHalf, secondHalf := recent[:mid], recent[mid:]
	rsiFirst, rsiSecond := rsi[:mid], rsi[mid:]

	priceHH := maxHigh(secondHalf) > maxHigh(firstHalf)
	rsiLH := nanMax(rsiSecond) < nanMax(rsiFirst)
	if priceHH && rsiLH {
		result.Bearish = true
	}

	priceLL := minLow(secondHalf) < minLow(firstHalf)
	rsiHL := nanMin(rsiSecond) > nanMin(rsiFirst)
	if priceLL && rsiHL {
		result.Bullish = true
	}

	return result
}

func maxHigh(candles []market.Candle) float64 {
	m := math.Inf(-1)
	for _, c := range candles {
		if c.High > m {
			m = c.High
		}
	}
	return m
}

func minLow(candles []market.Candle) float64 {
	m := math.Inf(1)
	for _, c := range candles {
		if c.Low < m {
			m = c.Low
		}
	}
	return m
}

// nanMax returns the largest non-NaN value, or NaN when every value is NaN
// so comparisons against it come out false
func nanMax(values []float64) float64 {
	m := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v > m {
			m = v
		}
	}
	return m
}

func nanMin(values []float64) float64 {
	m := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v < m {
			m = v
		}
	}
	return m
}

// ============================================================================
// VOLUME / RANGE CONTEXT
// ============================================================================

// CheckVolumeSpike reports whether the latest candle's volume exceeds 1.3x
// the average of the preceding `lookback` candles
func CheckVolumeSpike(candles []market.Candle, lookback int) bool {
	if lookback <= 0 {
		lookback = 5
	}
	if len(candles) < lookback+1 {
		return false
	}

	var sum int64
	for _, c := range candles[len(candles)-lookback-1 : len(candles)-1] {
		sum += c.Volume
	}
	avg := float64(sum) / float64(lookback)
	if avg == 0 {
		return false
	}

	return float64(candles[len(candles)-1].Volume) > avg*1.3
}

// RangeContext classifies the recent candle character by body-to-range
// ratio: heavy overlap reads LOW, clean expansion reads HIGH
func RangeContext(candles []market.Candle, lookback int) string {
	if lookback <= 0 {
		lookback = 3
	}
	if len(candles) < lookback {
		return "NORMAL"
	}

	var bodySum, rangeSum float64
	for _, c := range candles[len(candles)-lookback:] {
		bodySum += math.Abs(c.Close - c.Open)
		rangeSum += c.High - c.Low
	}

	avgBody := bodySum / float64(lookback)
	avgRange := rangeSum / float64(lookback)
	if avgRange == 0 {
		return "LOW"
	}

	ratio := avgBody / avgRange
	switch {
	case ratio < 0.3:
		return "LOW"
	case ratio > 0.6:
		return "HIGH"
	default:
		return "NORMAL"
	}
}

// ============================================================================
// MARKET LEVELS
// ============================================================================

// Levels holds key intraday reference levels. Zero values with the matching
// Has flag unset mean the level could not be derived from the data.
type Levels struct {
	YesterdayHigh float64 `json:"yesterday_high,omitempty"`
	YesterdayLow  float64 `json:"yesterday_low,omitempty"`
	TodayOpen     float64 `json:"today_open,omitempty"`
	First15mHigh  float64 `json:"first_15m_high,omitempty"`
	First15mLow   float64 `json:"first_15m_low,omitempty"`
	HasYesterday  bool    `json:"-"`
	HasToday      bool    `json:"-"`
}

// MarketLevels extracts yesterday's high/low and today's open plus the first
// bar's range, partitioned at midnight IST of the reference time
func MarketLevels(candles []market.Candle, now time.Time) Levels {
	var levels Levels
	if len(candles) == 0 {
		return levels
	}

	dayStart := market.StartOfDay(now)
	var today, yesterday []market.Candle
	for _, c := range candles {
		if c.Time.Before(dayStart) {
			yesterday = append(yesterday, c)
		} else {
			today = append(today, c)
		}
	}

	if len(yesterday) > 0 {
		levels.HasYesterday = true
		levels.YesterdayHigh = maxHigh(yesterday)
		levels.YesterdayLow = minLow(yesterday)
	}
	if len(today) > 0 {
		levels.HasToday = true
		levels.TodayOpen = today[0].Open
		levels.First15mHigh = today[0].High
		levels.First15mLow = today[0].Low
	}

	return levels
}
