package decision

import (
	"fmt"
	"math"
	"time"

	"stock-intelligence/internal/indicator"
	"stock-intelligence/internal/market"
)

// Minimum candles a timeframe needs before a stage will vote on it
const minBars = 20

// IST time-of-day gates, minutes since midnight
const (
	lateLongGate   = 11*60 + 30 // 11:30 AM, overbought exhaustion window
	lateShortGate  = 14 * 60    // 2:00 PM, oversold reversal window
	noNewTradeGate = 14*60 + 30 // 2:30 PM, no fresh entries
)

// ============================================================================
// STEP 0: HTF TREND FILTER (15m + 1h)
// ============================================================================

// htfTrendFilter checks the 15m and 1h charts for trend alignment. Both must
// agree before the pipeline takes a directional bias.
func htfTrendFilter(df15, df1h []market.Candle) HTFResult {
	result := HTFResult{Signal: HTFSideways, Details: []string{}}

	frames := []struct {
		label   string
		candles []market.Candle
	}{
		{"15m", df15},
		{"1h", df1h},
	}

	trends := map[string]string{}
	for _, f := range frames {
		if len(f.candles) < minBars {
			result.Details = append(result.Details, fmt.Sprintf("%s: Insufficient data", f.label))
			continue
		}

		price := market.LatestClose(f.candles)
		ema20 := indicator.CalculateEMA(f.candles, 20)
		vwap := indicator.CalculateVWAP(f.candles)
		rsi := indicator.CalculateRSI(f.candles, 14)
		structure := indicator.DetectSwings(f.candles, 3)

		rsiBias := "Sideways"
		if rsi > 55 {
			rsiBias = "Bullish"
		} else if rsi < 45 {
			rsiBias = "Bearish"
		}

		bullish := boolCount(price > ema20, price > vwap, rsiBias == "Bullish", structure == "Bullish")
		bearish := boolCount(price < ema20, price < vwap, rsiBias == "Bearish", structure == "Bearish")

		tfTrend := "Sideways"
		if bullish >= 3 {
			tfTrend = "Bullish"
		} else if bearish >= 3 {
			tfTrend = "Bearish"
		}

		trends[f.label] = tfTrend
		cmp := "<"
		if price > ema20 {
			cmp = ">"
		}
		result.Details = append(result.Details, fmt.Sprintf(
			"%s: %s (Price %s EMA20, RSI %s [%s], Structure: %s)",
			f.label, tfTrend, cmp, fmtNum(rsi), rsiBias, structure))
	}

	result.Trend15 = trends["15m"]
	result.Trend1h = trends["1h"]

	t15 := orSideways(result.Trend15)
	t1h := orSideways(result.Trend1h)
	switch {
	case t15 == "Bullish" && t1h == "Bullish":
		result.Signal = HTFBullish
	case t15 == "Bearish" && t1h == "Bearish":
		result.Signal = HTFBearish
	default:
		result.Signal = HTFSideways
	}

	return result
}

func orSideways(trend string) string {
	if trend == "" {
		return "Sideways"
	}
	return trend
}

func boolCount(conds ...bool) int {
	n := 0
	for _, c := range conds {
		if c {
			n++
		}
	}
	return n
}

// ============================================================================
// STEP 0.5: REVERSAL / EXHAUSTION FILTER (5m + 15m)
// ============================================================================

// reversalFilter looks for exhaustion signals that should block entries in
// one or both directions
func reversalFilter(df5, df15 []market.Candle, now time.Time) ReversalResult {
	result := ReversalResult{Reasons: []string{}}
	hourMin := market.MinutesIntoDay(now)

	frames := []struct {
		label   string
		candles []market.Candle
	}{
		{"5m", df5},
		{"15m", df15},
	}

	for _, f := range frames {
		if len(f.candles) < minBars {
			continue
		}

		div := indicator.DetectDivergence(f.candles, 20)
		rsi := indicator.CalculateRSI(f.candles, 14)
		volSpike := indicator.CheckVolumeSpike(f.candles, 5)
		last := f.candles[len(f.candles)-1]

		if div.Bearish {
			result.BlockedLongs = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("%s: Bearish RSI divergence detected", f.label))
		}

		// Long upper wick rejection on a red candle with a volume spike
		if volSpike && last.Close < last.Open {
			wick := last.High - math.Max(last.Open, last.Close)
			body := math.Abs(last.Close - last.Open)
			if body > 0 && wick/body > 1.5 {
				result.BlockedLongs = true
				result.Reasons = append(result.Reasons, fmt.Sprintf("%s: Upper wick rejection with volume spike", f.label))
			}
		}

		if hourMin >= lateLongGate && rsi > 70 {
			result.BlockedLongs = true
			result.Reasons = append(result.Reasons, fmt.Sprintf(
				"%s: RSI %s > 70 after 11:30 AM — exhaustion risk", f.label, fmtNum(rsi)))
		}

		if div.Bullish {
			result.BlockedShorts = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("%s: Bullish RSI divergence detected", f.label))
		}

		if hourMin >= lateShortGate && rsi < 30 {
			result.BlockedShorts = true
			result.Reasons = append(result.Reasons, fmt.Sprintf(
				"%s: RSI %s < 30 after 2:00 PM — reversal risk", f.label, fmtNum(rsi)))
		}
	}

	if result.BlockedLongs && result.BlockedShorts {
		result.ForceNoTrade = true
		result.Reasons = append(result.Reasons, "Both directions blocked → FORCE NO TRADE")
	}

	return result
}

// ============================================================================
// STEP 1: MARKET STRUCTURE + RANGE CONTEXT (15m)
// ============================================================================

// marketStructureAnalysis marks key levels and assesses the range character
func marketStructureAnalysis(df15 []market.Candle, now time.Time) StructureResult {
	result := StructureResult{
		RangeContext: "NORMAL",
		Structure:    "Sideways",
		Details:      []string{},
	}
	if len(df15) == 0 {
		return result
	}

	levels := indicator.MarketLevels(df15, now)
	levels.YesterdayHigh = round2(levels.YesterdayHigh)
	levels.YesterdayLow = round2(levels.YesterdayLow)
	levels.TodayOpen = round2(levels.TodayOpen)
	levels.First15mHigh = round2(levels.First15mHigh)
	levels.First15mLow = round2(levels.First15mLow)

	result.Levels = levels
	result.RangeContext = indicator.RangeContext(df15, 3)
	result.Structure = indicator.DetectSwings(df15, 3)

	result.Details = append(result.Details, fmt.Sprintf("Range: %s", result.RangeContext))
	if levels.HasYesterday {
		result.Details = append(result.Details, fmt.Sprintf("Yesterday: %s – %s",
			fmtNum(levels.YesterdayLow), fmtNum(levels.YesterdayHigh)))
	}
	if levels.HasToday {
		result.Details = append(result.Details, fmt.Sprintf("Today Open: %s", fmtNum(levels.TodayOpen)))
		result.Details = append(result.Details, fmt.Sprintf("First 15m: %s – %s",
			fmtNum(levels.First15mLow), fmtNum(levels.First15mHigh)))
	}

	return result
}

// ============================================================================
// STEP 2: SCALP ANALYSIS (1m/3m/5m)
// ============================================================================

// scalpAnalysis scores long and short conditions per low timeframe. A
// timeframe votes when 4 of 5 conditions line up; two agreeing timeframes
// make the signal.
func scalpAnalysis(df1, df3, df5 []market.Candle) ScalpResult {
	result := ScalpResult{Signal: ScalpNoTrade, Details: []string{}}
	bullishScore, bearishScore := 0, 0

	frames := []struct {
		label   string
		candles []market.Candle
	}{
		{"1m", df1},
		{"3m", df3},
		{"5m", df5},
	}

	for _, f := range frames {
		if len(f.candles) < minBars {
			result.Details = append(result.Details, fmt.Sprintf("%s: Insufficient data", f.label))
			continue
		}

		price := market.LatestClose(f.candles)
		ema9 := indicator.CalculateEMA(f.candles, 9)
		ema20 := indicator.CalculateEMA(f.candles, 20)
		vwap := indicator.CalculateVWAP(f.candles)
		rsi := indicator.CalculateRSI(f.candles, 14)
		macd := indicator.CalculateMACD(f.candles)

		longScore := boolCount(
			price > vwap,
			price > ema20,
			ema9 > ema20,
			rsi >= 50 && rsi <= 70,
			macd.Histogram > 0,
		)
		shortScore := boolCount(
			price < vwap,
			price < ema20,
			ema9 < ema20,
			rsi >= 30 && rsi <= 50,
			macd.Histogram < 0,
		)

		switch {
		case longScore >= 4:
			bullishScore++
			result.Details = append(result.Details, fmt.Sprintf("%s: 🟢 Bullish (%d/5 conditions)", f.label, longScore))
		case shortScore >= 4:
			bearishScore++
			result.Details = append(result.Details, fmt.Sprintf("%s: 🔴 Bearish (%d/5 conditions)", f.label, shortScore))
		default:
			result.Details = append(result.Details, fmt.Sprintf("%s: ⚪ Neutral (L:%d S:%d)", f.label, longScore, shortScore))
		}
	}

	switch {
	case bullishScore >= 2:
		result.Signal = ScalpBuy
	case bearishScore >= 2:
		result.Signal = ScalpSell
	}

	return result
}

// ============================================================================
// STEP 3: 3-MIN CONFIRMATION (3m + 5m)
// ============================================================================

// threeMinConfirm requires both the 3m and 5m frames to agree before the
// scalp signal counts as confirmed
func threeMinConfirm(df3, df5 []market.Candle) ConfirmResult {
	result := ConfirmResult{Signal: ConfirmNeutral, Details: []string{}}
	greenCount, redCount := 0, 0

	frames := []struct {
		label   string
		candles []market.Candle
	}{
		{"3m", df3},
		{"5m", df5},
	}

	for _, f := range frames {
		if len(f.candles) < minBars {
			result.Details = append(result.Details, fmt.Sprintf("%s: Insufficient data", f.label))
			continue
		}

		price := market.LatestClose(f.candles)
		ema9 := indicator.CalculateEMA(f.candles, 9)
		ema20 := indicator.CalculateEMA(f.candles, 20)
		vwap := indicator.CalculateVWAP(f.candles)
		rsi := indicator.CalculateRSI(f.candles, 14)

		// The 3m frame carries the stricter RSI threshold
		greenRSI, redRSI := 50.0, 50.0
		if f.label == "3m" {
			greenRSI, redRSI = 55.0, 45.0
		}

		g := boolCount(price > ema20, price > vwap, ema9 > ema20, rsi > greenRSI)
		r := boolCount(price < ema20, price < vwap, ema9 < ema20, rsi < redRSI)

		switch {
		case g >= 3:
			greenCount++
			result.Details = append(result.Details, fmt.Sprintf("%s: 🟢 GREEN (%d/4)", f.label, g))
		case r >= 3:
			redCount++
			result.Details = append(result.Details, fmt.Sprintf("%s: 🔴 RED (%d/4)", f.label, r))
		default:
			result.Details = append(result.Details, fmt.Sprintf("%s: ⚪ NEUTRAL (G:%d R:%d)", f.label, g, r))
		}
	}

	switch {
	case greenCount == 2:
		result.Signal = ConfirmGreen
	case redCount == 2:
		result.Signal = ConfirmRed
	}

	return result
}
