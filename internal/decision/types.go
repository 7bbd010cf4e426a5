package decision

import (
	"math"
	"strconv"

	"stock-intelligence/internal/indicator"
)

// Signal vocabulary shared across the pipeline stages
const (
	HTFBullish  = "🟢 Bullish"
	HTFBearish  = "🔴 Bearish"
	HTFSideways = "⚪ Sideways"

	ScalpBuy     = "🟢 BUY/CE"
	ScalpSell    = "🔴 SELL/PE"
	ScalpNoTrade = "⚪ NO TRADE"

	ConfirmGreen   = "🟢 GREEN"
	ConfirmRed     = "🔴 RED"
	ConfirmNeutral = "⚪ NEUTRAL"
)

// Setup strength labels
const (
	StrengthStrong = "STRONG"
	StrengthNormal = "NORMAL"
	StrengthWeak   = "WEAK"
)

// HTFResult is the higher-timeframe trend filter outcome
type HTFResult struct {
	Signal  string   `json:"signal"`
	Trend15 string   `json:"15m_trend,omitempty"`
	Trend1h string   `json:"1h_trend,omitempty"`
	Details []string `json:"details"`
}

// ReversalResult flags exhaustion conditions that block entries
type ReversalResult struct {
	BlockedLongs  bool     `json:"blocked_longs"`
	BlockedShorts bool     `json:"blocked_shorts"`
	Reasons       []string `json:"reasons"`
	ForceNoTrade  bool     `json:"force_no_trade"`
}

// StructureResult carries market structure, levels and range context
type StructureResult struct {
	Levels       indicator.Levels `json:"levels"`
	RangeContext string           `json:"range_context"`
	Structure    string           `json:"structure"`
	Details      []string         `json:"details"`
}

// ScalpResult is the low-timeframe scalp vote outcome
type ScalpResult struct {
	Signal  string   `json:"signal"`
	Details []string `json:"details"`
}

// ConfirmResult is the 3-minute confirmation outcome
type ConfirmResult struct {
	Signal  string   `json:"signal"`
	Details []string `json:"details"`
}

// RiskResult is the final execute decision with its skip reasons
type RiskResult struct {
	Execute     string   `json:"execute"`
	Reason      string   `json:"reason"`
	SkipReasons []string `json:"skip_reasons"`
}

// OptionStrike is the recommended option contract for the detected setup
type OptionStrike struct {
	Strike       int    `json:"strike"`
	StrikeLabel  string `json:"strike_label"`
	OptionType   string `json:"option_type"`
	EstPremium   int    `json:"est_premium"`
	SLPoints     int    `json:"sl_points"`
	TargetPoints int    `json:"target_points"`
	PremiumValid bool   `json:"premium_valid"`
}

// StepsDetail groups every stage's raw outcome for transparency
type StepsDetail struct {
	HTF             HTFResult       `json:"htf"`
	Reversal        ReversalResult  `json:"reversal"`
	MarketStructure StructureResult `json:"market_structure"`
	Scalp           ScalpResult     `json:"scalp"`
	Confirm         ConfirmResult   `json:"confirm"`
	Risk            RiskResult      `json:"risk"`
}

// Result is the full advanced analysis output
type Result struct {
	PromptVersion   int           `json:"prompt_version"`
	DateTime        string        `json:"date_time"`
	Index           string        `json:"index"`
	SpotPrice       float64       `json:"spot_price"`
	ScalpSignal     string        `json:"scalp_signal"`
	ThreeMinConfirm string        `json:"three_min_confirm"`
	HTFTrend        string        `json:"htf_trend"`
	TrendDirection  string        `json:"trend_direction"`
	OptionStrike    *OptionStrike `json:"option_strike"`
	Execute         string        `json:"execute"`
	ExecuteReason   string        `json:"execute_reason"`
	Steps           StepsDetail   `json:"steps_detail"`
}

// round2 rounds to two decimals for display. Stage comparisons always run on
// the unrounded values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// fmtNum renders a display-rounded number without trailing zeros
func fmtNum(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}
