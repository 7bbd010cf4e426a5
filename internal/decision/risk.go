package decision

import (
	"fmt"
	"strings"
	"time"

	"stock-intelligence/internal/market"
)

// riskManagement aggregates every stage into the final execute decision.
// Any skip reason forces NO TRADE; otherwise alignment across stages grades
// the entry Strong or Weak.
func riskManagement(htf HTFResult, reversal ReversalResult, scalp ScalpResult,
	confirm ConfirmResult, option *OptionStrike, now time.Time) RiskResult {

	result := RiskResult{Execute: "NO TRADE", SkipReasons: []string{}}
	hourMin := market.MinutesIntoDay(now)

	if hourMin >= noNewTradeGate {
		result.SkipReasons = append(result.SkipReasons, "After 2:30 PM — no new trades")
	}

	if strings.Contains(htf.Signal, "Sideways") {
		result.SkipReasons = append(result.SkipReasons, "HTF sideways — no directional bias")
	}

	switch {
	case reversal.ForceNoTrade:
		result.SkipReasons = append(result.SkipReasons, "Reversal filter: both directions blocked")
	case reversal.BlockedLongs && strings.Contains(scalp.Signal, "BUY"):
		result.SkipReasons = append(result.SkipReasons, "Reversal filter: longs blocked")
	case reversal.BlockedShorts && strings.Contains(scalp.Signal, "SELL"):
		result.SkipReasons = append(result.SkipReasons, "Reversal filter: shorts blocked")
	}

	if strings.Contains(confirm.Signal, "NEUTRAL") {
		result.SkipReasons = append(result.SkipReasons, "3-min confirmation: NEUTRAL — no clear signal")
	}

	if option != nil && !option.PremiumValid {
		result.SkipReasons = append(result.SkipReasons,
			fmt.Sprintf("Premium ₹%d outside ₹80–₹250 range", option.EstPremium))
	}

	if len(result.SkipReasons) > 0 {
		result.Execute = "NO TRADE"
		result.Reason = strings.Join(result.SkipReasons, " | ")
		return result
	}

	htfAligned := strings.Contains(htf.Signal, "Bullish") || strings.Contains(htf.Signal, "Bearish")
	confirmAligned := strings.Contains(confirm.Signal, "GREEN") || strings.Contains(confirm.Signal, "RED")
	scalpAligned := strings.Contains(scalp.Signal, "BUY") || strings.Contains(scalp.Signal, "SELL")
	noReversal := !reversal.BlockedLongs && !reversal.BlockedShorts

	switch {
	case htfAligned && confirmAligned && scalpAligned && noReversal:
		result.Execute = "Strong"
		result.Reason = "HTF aligned + 3-min confirmed + no reversal filter"
	case htfAligned && confirmAligned:
		result.Execute = "Weak"
		result.Reason = "Aligned but scalp not fully confirmed"
	default:
		result.Execute = "NO TRADE"
		result.Reason = "Insufficient alignment across timeframes"
	}

	return result
}
