package checkpoint

import (
	"time"

	"github.com/google/uuid"

	"stock-intelligence/internal/decision"
	"stock-intelligence/internal/market"
)

// Snapshot is the analysis payload stored for one checkpoint slot
type Snapshot struct {
	CaptureID     string `json:"capture_id"`
	CapturedAt    string `json:"captured_at"`
	IsMarketOpen  bool   `json:"is_market_open"`
	MarketMessage string `json:"market_message"`

	PromptVersion   int                    `json:"prompt_version"`
	Index           string                 `json:"index"`
	SpotPrice       float64                `json:"spot_price"`
	ScalpSignal     string                 `json:"scalp_signal"`
	ThreeMinConfirm string                 `json:"three_min_confirm"`
	HTFTrend        string                 `json:"htf_trend"`
	TrendDirection  string                 `json:"trend_direction"`
	Execute         string                 `json:"execute"`
	ExecuteReason   string                 `json:"execute_reason"`
	OptionStrike    *decision.OptionStrike `json:"option_strike"`
	Steps           decision.StepsDetail   `json:"steps_detail"`
}

// NewSnapshot wraps an analysis result with capture metadata
func NewSnapshot(result decision.Result, now time.Time) *Snapshot {
	return &Snapshot{
		CaptureID:       uuid.NewString(),
		CapturedAt:      now.In(market.IST).Format(time.RFC3339),
		IsMarketOpen:    market.IsMarketOpen(now),
		MarketMessage:   market.StatusMessage(now),
		PromptVersion:   result.PromptVersion,
		Index:           result.Index,
		SpotPrice:       result.SpotPrice,
		ScalpSignal:     result.ScalpSignal,
		ThreeMinConfirm: result.ThreeMinConfirm,
		HTFTrend:        result.HTFTrend,
		TrendDirection:  result.TrendDirection,
		Execute:         result.Execute,
		ExecuteReason:   result.ExecuteReason,
		OptionStrike:    result.OptionStrike,
		Steps:           result.Steps,
	}
}

// Panel is one checkpoint slot in the day view. Data stays nil until the
// slot has been captured.
type Panel struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Time  string    `json:"time"`
	Data  *Snapshot `json:"data"`
}
