package market

import "time"

// Candle represents a single OHLCV bar
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Frames holds candles per timeframe, keyed by interval name ("1m", "3m", "5m", "15m", "1h")
type Frames map[string][]Candle

// FrameOrder is the priority order used when picking a reference frame
// (most granular first)
var FrameOrder = []string{"1m", "3m", "5m", "15m", "1h"}

// LatestClose returns the close of the most recent candle, or 0 if empty
func LatestClose(candles []Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}

// SpotPrice returns the latest close from the first non-empty frame
// following FrameOrder
func (f Frames) SpotPrice() float64 {
	for _, tf := range FrameOrder {
		if bars := f[tf]; len(bars) > 0 {
			return bars[len(bars)-1].Close
		}
	}
	return 0
}

// Empty reports whether every frame is empty
func (f Frames) Empty() bool {
	for _, bars := range f {
		if len(bars) > 0 {
			return false
		}
	}
	return true
}
