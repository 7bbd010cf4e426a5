package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock-intelligence/internal/checkpoint"
	"stock-intelligence/internal/decision"
	"stock-intelligence/internal/indicator"
	"stock-intelligence/internal/market"
	"stock-intelligence/internal/metrics"
)

// BollingerData carries the three band values
type BollingerData struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// MacdData carries MACD line, signal and histogram
type MacdData struct {
	MacdLine   float64 `json:"macd_line"`
	SignalLine float64 `json:"signal_line"`
	Histogram  float64 `json:"histogram"`
}

// IndicatorSignals carries the per-indicator informational votes
type IndicatorSignals struct {
	EMA20     string `json:"ema20"`
	RSI14     string `json:"rsi14"`
	VWAP      string `json:"vwap"`
	Bollinger string `json:"bollinger"`
	MACD      string `json:"macd"`
}

// IndicatorData groups the computed indicators for the analyze response
type IndicatorData struct {
	EMA20     float64          `json:"ema20"`
	RSI14     float64          `json:"rsi14"`
	VWAP      float64          `json:"vwap"`
	Bollinger BollingerData    `json:"bollinger"`
	MACD      MacdData         `json:"macd"`
	Signals   IndicatorSignals `json:"signals"`
}

// OhlcBar is one candle in the analyze response
type OhlcBar struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// AnalyzeResponse is the basic analysis payload
type AnalyzeResponse struct {
	Symbol     string        `json:"symbol"`
	Price      float64       `json:"price"`
	Indicators IndicatorData `json:"indicators"`
	Decision   string        `json:"decision"`
	Reasoning  []string      `json:"reasoning"`
	Timestamp  time.Time     `json:"timestamp"`
	Candles    []OhlcBar     `json:"candles"`
}

// AdvancedResponse is the full pipeline result plus market status
type AdvancedResponse struct {
	decision.Result
	IsMarketOpen  bool   `json:"is_market_open"`
	MarketMessage string `json:"market_message"`
}

// CheckpointsResponse is the day view with all seven panels
type CheckpointsResponse struct {
	Date            string             `json:"date"`
	Symbol          string             `json:"symbol"`
	Panels          []checkpoint.Panel `json:"panels"`
	CheckpointsMeta []checkpoint.Meta  `json:"checkpoints_meta"`
}

// TriggerResponse confirms a manual or scheduled checkpoint capture
type TriggerResponse struct {
	Status       string `json:"status"`
	Date         string `json:"date"`
	CheckpointID string `json:"checkpoint_id"`
	Symbol       string `json:"symbol"`
	Signal       string `json:"signal"`
	Execute      string `json:"execute"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// handleAnalyze runs the basic decision rule on the 3m frame, falling back
// to raw 1m data when resampling yields nothing
func (s *Server) handleAnalyze(c *gin.Context) {
	start := time.Now()
	sym := c.DefaultQuery("symbol", s.config.DefaultSymbol)

	frames, err := s.data.FetchFrames(c.Request.Context(), sym)
	var df []market.Candle
	if err == nil {
		df = frames["3m"]
	}
	if len(df) == 0 {
		df, err = s.data.FetchIntraday(c.Request.Context(), sym, "1m", "5d")
		if err != nil {
			if errors.Is(err, market.ErrNoData) {
				metrics.AnalyzeRequests.WithLabelValues("analyze", "not_found").Inc()
				errorResponse(c, http.StatusNotFound, err.Error())
				return
			}
			metrics.AnalyzeRequests.WithLabelValues("analyze", "error").Inc()
			errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch data: %v", err))
			return
		}
	}

	price := market.LatestClose(df)
	ema20 := indicator.CalculateEMA(df, 20)
	rsi := indicator.CalculateRSI(df, 14)
	vwap := indicator.CalculateVWAP(df)
	upper, middle, lower := indicator.CalculateBollinger(df, 20, 2.0)
	macd := indicator.CalculateMACD(df)

	signals := indicatorSignals(price, ema20, rsi, vwap, upper, lower, macd)
	dec, reasoning := decision.MakeDecision(price, ema20, rsi, vwap,
		decision.Bollinger{Upper: upper, Middle: middle, Lower: lower}, macd)

	candles := make([]OhlcBar, 0, len(df))
	for _, bar := range df {
		candles = append(candles, OhlcBar{
			Time:  bar.Time.Format(time.RFC3339),
			Open:  round2(bar.Open),
			High:  round2(bar.High),
			Low:   round2(bar.Low),
			Close: round2(bar.Close),
		})
	}

	metrics.AnalyzeRequests.WithLabelValues("analyze", "ok").Inc()
	metrics.AnalysisDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, AnalyzeResponse{
		Symbol: sym,
		Price:  round2(price),
		Indicators: IndicatorData{
			EMA20: round2(ema20),
			RSI14: round2(rsi),
			VWAP:  round2(vwap),
			Bollinger: BollingerData{
				Upper:  round2(upper),
				Middle: round2(middle),
				Lower:  round2(lower),
			},
			MACD: MacdData{
				MacdLine:   round2(macd.MACD),
				SignalLine: round2(macd.Signal),
				Histogram:  round2(macd.Histogram),
			},
			Signals: signals,
		},
		Decision:  dec,
		Reasoning: reasoning,
		Timestamp: time.Now().UTC(),
		Candles:   candles,
	})
}

// indicatorSignals computes the informational BUY/SELL/NEUTRAL vote per
// indicator. Small buffers keep the EMA and VWAP votes from flapping around
// the line.
func indicatorSignals(price, ema20, rsi, vwap, bbUpper, bbLower float64, macd indicator.MACDResult) IndicatorSignals {
	signals := IndicatorSignals{
		EMA20:     "NEUTRAL",
		RSI14:     "NEUTRAL",
		VWAP:      "NEUTRAL",
		Bollinger: "NEUTRAL",
		MACD:      "NEUTRAL",
	}

	if price > ema20*1.0005 {
		signals.EMA20 = "BUY"
	} else if price < ema20*0.9995 {
		signals.EMA20 = "SELL"
	}

	if rsi < 35 {
		signals.RSI14 = "BUY"
	} else if rsi > 65 {
		signals.RSI14 = "SELL"
	}

	if price > vwap*1.0002 {
		signals.VWAP = "BUY"
	} else if price < vwap*0.9998 {
		signals.VWAP = "SELL"
	}

	if price < bbLower {
		signals.Bollinger = "BUY"
	} else if price > bbUpper {
		signals.Bollinger = "SELL"
	}

	if macd.MACD > macd.Signal {
		signals.MACD = "BUY"
	} else if macd.MACD < macd.Signal {
		signals.MACD = "SELL"
	}

	return signals
}

// handleAdvancedAnalyze runs the full multi-timeframe pipeline
func (s *Server) handleAdvancedAnalyze(c *gin.Context) {
	start := time.Now()
	sym := c.DefaultQuery("symbol", s.config.DefaultSymbol)

	frames, err := s.data.FetchFrames(c.Request.Context(), sym)
	if err != nil {
		if errors.Is(err, market.ErrNoData) {
			metrics.AnalyzeRequests.WithLabelValues("advanced_analyze", "not_found").Inc()
			errorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		metrics.AnalyzeRequests.WithLabelValues("advanced_analyze", "error").Inc()
		errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch data: %v", err))
		return
	}

	now := time.Now()
	result := s.pipeline.Run(frames, sym, now)

	metrics.AnalyzeRequests.WithLabelValues("advanced_analyze", "ok").Inc()
	metrics.AnalysisDuration.WithLabelValues("advanced_analyze").Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, AdvancedResponse{
		Result:        result,
		IsMarketOpen:  market.IsMarketOpen(now),
		MarketMessage: market.StatusMessage(now),
	})
}

// handleGetCheckpoints returns all seven checkpoint panels for a day
func (s *Server) handleGetCheckpoints(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", s.config.DefaultSymbol)
	date := c.DefaultQuery("date", checkpoint.TodayIST())

	panels := s.store.LoadAll(c.Request.Context(), date, symbol)

	c.JSON(http.StatusOK, CheckpointsResponse{
		Date:            date,
		Symbol:          symbol,
		Panels:          panels,
		CheckpointsMeta: checkpoint.Checkpoints,
	})
}

// handleTriggerCheckpoint runs the pipeline and saves the snapshot into the
// requested slot. Called by the scheduler at market times or manually for
// testing.
func (s *Server) handleTriggerCheckpoint(c *gin.Context) {
	checkpointID := c.Query("checkpoint_id")
	symbol := c.DefaultQuery("symbol", s.config.DefaultSymbol)

	if !checkpoint.ValidID(checkpointID) {
		errorResponse(c, http.StatusBadRequest,
			fmt.Sprintf("Invalid checkpoint_id. Valid: %v", checkpoint.ValidIDs()))
		return
	}

	snap, saved, err := s.runner.Capture(c.Request.Context(), checkpointID, symbol)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("Data fetch failed: %v", err))
		return
	}
	if !saved {
		errorResponse(c, http.StatusServiceUnavailable,
			"Redis save failed — check REDIS_ADDRESS / REDIS_PASSWORD configuration.")
		return
	}

	c.JSON(http.StatusOK, TriggerResponse{
		Status:       "saved",
		Date:         checkpoint.TodayIST(),
		CheckpointID: checkpointID,
		Symbol:       symbol,
		Signal:       snap.ScalpSignal,
		Execute:      snap.Execute,
	})
}
