package decision

import (
	"log/slog"
	"strings"
	"time"

	"stock-intelligence/internal/market"
)

// PromptVersion identifies the analysis output format
const PromptVersion = 2

// Pipeline runs the six-step multi-timeframe scalping analysis:
//
//	0.  HTF trend filter (15m + 1h)
//	0.5 Reversal / exhaustion filter
//	1.  Market structure + range context
//	2.  Scalp analysis (1m/3m/5m)
//	3.  3-min confirmation
//	4.  Option strike selection
//	5.  Risk & trade management
type Pipeline struct {
	log *slog.Logger
}

// NewPipeline creates the advanced analysis pipeline
func NewPipeline(log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{log: log.With("component", "decision_pipeline")}
}

// Run executes the full pipeline over the fetched frames and assembles the
// structured result
func (p *Pipeline) Run(frames market.Frames, symbol string, now time.Time) Result {
	df1 := frames["1m"]
	df3 := frames["3m"]
	df5 := frames["5m"]
	df15 := frames["15m"]
	df1h := frames["1h"]

	spot := frames.SpotPrice()
	istNow := now.In(market.IST)

	htf := htfTrendFilter(df15, df1h)
	reversal := reversalFilter(df5, df15, now)
	structure := marketStructureAnalysis(df15, now)
	scalp := scalpAnalysis(df1, df3, df5)
	confirm := threeMinConfirm(df3, df5)

	direction := "NONE"
	if strings.Contains(scalp.Signal, "BUY") {
		direction = "CE"
	} else if strings.Contains(scalp.Signal, "SELL") {
		direction = "PE"
	}

	htfAligned := strings.Contains(htf.Signal, "Bullish") || strings.Contains(htf.Signal, "Bearish")
	confirmOK := strings.Contains(confirm.Signal, "GREEN") || strings.Contains(confirm.Signal, "RED")

	setupStrength := StrengthWeak
	if htfAligned && confirmOK && !reversal.ForceNoTrade {
		setupStrength = StrengthStrong
	} else if htfAligned && confirmOK {
		setupStrength = StrengthNormal
	}

	option := optionStrikeSelection(spot, direction, setupStrength, structure.RangeContext)
	risk := riskManagement(htf, reversal, scalp, confirm, option, now)

	trendDir := htf.Signal
	if strings.Contains(htf.Signal, "Sideways") {
		switch {
		case strings.Contains(scalp.Signal, "BUY"):
			trendDir = HTFSideways + " → " + HTFBullish
		case strings.Contains(scalp.Signal, "SELL"):
			trendDir = HTFSideways + " → " + HTFBearish
		default:
			trendDir = HTFSideways
		}
	}

	p.log.Info("analysis complete",
		"symbol", symbol,
		"scalp_signal", scalp.Signal,
		"htf_trend", htf.Signal,
		"execute", risk.Execute)

	return Result{
		PromptVersion:   PromptVersion,
		DateTime:        istNow.Format("02 Jan 2006, 03:04 PM") + " IST",
		Index:           market.DisplayName(symbol),
		SpotPrice:       round2(spot),
		ScalpSignal:     scalp.Signal,
		ThreeMinConfirm: confirm.Signal,
		HTFTrend:        htf.Signal,
		TrendDirection:  trendDir,
		OptionStrike:    option,
		Execute:         risk.Execute,
		ExecuteReason:   risk.Reason,
		Steps: StepsDetail{
			HTF:             htf,
			Reversal:        reversal,
			MarketStructure: structure,
			Scalp:           scalp,
			Confirm:         confirm,
			Risk:            risk,
		},
	}
}
