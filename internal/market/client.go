package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoData indicates the data source returned no candles for the symbol
var ErrNoData = errors.New("no market data available")

// timeframe fetch plan: interval to lookback range
var framePlan = []struct {
	Interval string
	Range    string
}{
	{"1m", "7d"},
	{"5m", "5d"},
	{"15m", "5d"},
	{"1h", "5d"},
}

// Client fetches intraday candles from the Yahoo Finance chart API
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a market data client. baseURL defaults to the public
// Yahoo endpoint when empty.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// chart API response shape
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchIntraday fetches candles for one symbol/interval/range combination.
// Bars with null quote values are skipped. Returns ErrNoData when the
// response carries no usable candles.
func (c *Client) FetchIntraday(ctx context.Context, symbol, interval, rng string) ([]Candle, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build chart request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stock-intelligence/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chart %s %s: %w", symbol, interval, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chart API %s %s: status %d: %s", symbol, interval, resp.StatusCode, string(body))
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s (%s)",
			symbol, parsed.Chart.Error.Description, parsed.Chart.Error.Code)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		var vol int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		candles = append(candles, Candle{
			Time:   time.Unix(ts, 0).In(IST),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: vol,
		})
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, nil
}

// FetchFrames fetches all analysis timeframes concurrently and derives the
// 3m frame from 1m data. A failed timeframe degrades to an empty slice so a
// single upstream hiccup does not sink the whole analysis. Returns ErrNoData
// only when every frame came back empty.
func (c *Client) FetchFrames(ctx context.Context, symbol string) (Frames, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		frames = make(Frames, len(framePlan)+1)
	)

	for _, plan := range framePlan {
		wg.Add(1)
		go func(interval, rng string) {
			defer wg.Done()
			bars, err := c.FetchIntraday(ctx, symbol, interval, rng)
			if err != nil {
				c.log.Warn().Err(err).Str("symbol", symbol).Str("interval", interval).
					Msg("timeframe fetch failed, continuing with empty frame")
				bars = nil
			}
			mu.Lock()
			frames[interval] = bars
			mu.Unlock()
		}(plan.Interval, plan.Range)
	}
	wg.Wait()

	frames["3m"] = Resample3m(frames["1m"])

	if frames.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return frames, nil
}
