package decision

import (
	"fmt"

	"stock-intelligence/internal/indicator"
)

// Bollinger holds the three band values for the basic rule
type Bollinger struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// MakeDecision evaluates the core intraday rule and returns the decision with
// its reasoning trail.
//
//	BUY  price > EMA20 AND RSI < 60 AND price > VWAP
//	SELL price < EMA20 AND RSI > 70 AND price < VWAP
//	HOLD everything else
//
// Bollinger and MACD values only enrich the reasoning, they never change the
// decision.
func MakeDecision(price, ema20, rsi, vwap float64, bb Bollinger, macd indicator.MACDResult) (string, []string) {
	var reasons []string

	aboveEMA := price > ema20
	if aboveEMA {
		reasons = append(reasons, fmt.Sprintf("Price above EMA20 (%s)", fmtNum(ema20)))
	} else {
		reasons = append(reasons, fmt.Sprintf("Price below EMA20 (%s)", fmtNum(ema20)))
	}

	rsiBullish := rsi < 60
	rsiBearish := rsi > 70
	switch {
	case rsiBullish:
		reasons = append(reasons, fmt.Sprintf("RSI (%s) indicates room to move up", fmtNum(rsi)))
	case rsiBearish:
		reasons = append(reasons, fmt.Sprintf("RSI (%s) indicates overbought conditions", fmtNum(rsi)))
	default:
		reasons = append(reasons, fmt.Sprintf("RSI (%s) is in neutral zone (60-70)", fmtNum(rsi)))
	}

	aboveVWAP := price > vwap
	if aboveVWAP {
		reasons = append(reasons, fmt.Sprintf("Price above VWAP (%s)", fmtNum(vwap)))
	} else {
		reasons = append(reasons, fmt.Sprintf("Price below VWAP (%s)", fmtNum(vwap)))
	}

	switch {
	case price >= bb.Upper:
		reasons = append(reasons, fmt.Sprintf("Price at/above upper Bollinger Band (%s) — potential resistance", fmtNum(bb.Upper)))
	case price <= bb.Lower:
		reasons = append(reasons, fmt.Sprintf("Price at/below lower Bollinger Band (%s) — potential support", fmtNum(bb.Lower)))
	default:
		bandPos := 50.0
		if bb.Upper != bb.Lower {
			bandPos = (price - bb.Lower) / (bb.Upper - bb.Lower) * 100
		}
		reasons = append(reasons, fmt.Sprintf("Price at %.0f%% within Bollinger Bands (%s – %s)",
			bandPos, fmtNum(bb.Lower), fmtNum(bb.Upper)))
	}

	if macd.MACD > macd.Signal {
		reasons = append(reasons, fmt.Sprintf("MACD (%s) above signal (%s) — bullish momentum",
			fmtNum(macd.MACD), fmtNum(macd.Signal)))
	} else {
		reasons = append(reasons, fmt.Sprintf("MACD (%s) below signal (%s) — bearish momentum",
			fmtNum(macd.MACD), fmtNum(macd.Signal)))
	}

	belowEMA := price < ema20
	belowVWAP := price < vwap

	if aboveEMA && rsiBullish && aboveVWAP {
		return "BUY", reasons
	}
	if belowEMA && rsiBearish && belowVWAP {
		return "SELL", reasons
	}

	reasons = append(reasons, "Conditions do not strongly favour BUY or SELL")
	return "HOLD", reasons
}
