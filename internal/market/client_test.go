package market

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// chartBody builds a Yahoo chart payload. Nil entries become JSON nulls.
func chartBody(timestamps []int64, opens, highs, lows, closes []interface{}, volumes []interface{}) []byte {
	payload := map[string]interface{}{
		"chart": map[string]interface{}{
			"result": []interface{}{
				map[string]interface{}{
					"timestamp": timestamps,
					"indicators": map[string]interface{}{
						"quote": []interface{}{
							map[string]interface{}{
								"open":   opens,
								"high":   highs,
								"low":    lows,
								"close":  closes,
								"volume": volumes,
							},
						},
					},
				},
			},
			"error": nil,
		},
	}
	data, _ := json.Marshal(payload)
	return data
}

func testClient(url string) *Client {
	return NewClient(url, 5*time.Second, zerolog.Nop())
}

func TestFetchIntraday(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 15, 0, 0, IST).Unix()
	body := chartBody(
		[]int64{base, base + 60, base + 120},
		[]interface{}{100.0, nil, 102.0},
		[]interface{}{101.0, 102.0, 103.0},
		[]interface{}{99.0, 100.0, 101.0},
		[]interface{}{100.5, 101.5, 102.5},
		[]interface{}{10, 20, nil},
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") == "" || r.URL.Query().Get("range") == "" {
			t.Errorf("Missing interval/range query params: %s", r.URL.RawQuery)
		}
		w.Write(body)
	}))
	defer server.Close()

	candles, err := testClient(server.URL).FetchIntraday(context.Background(), "^NSEI", "1m", "7d")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// The middle bar carries a null open and is skipped
	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles, got %d", len(candles))
	}
	if candles[0].Open != 100 || candles[0].Close != 100.5 || candles[0].Volume != 10 {
		t.Errorf("First candle mismatch: %+v", candles[0])
	}
	// Null volume degrades to zero rather than dropping the bar
	if candles[1].Close != 102.5 || candles[1].Volume != 0 {
		t.Errorf("Second candle mismatch: %+v", candles[1])
	}
	if !candles[0].Time.Before(candles[1].Time) {
		t.Error("Candles should be sorted by time")
	}
}

func TestFetchIntradayNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchIntraday(context.Background(), "BOGUS", "1m", "7d")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("404 should map to ErrNoData, got %v", err)
	}
}

func TestFetchIntradayAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchIntraday(context.Background(), "^NSEI", "1m", "7d")
	if err == nil {
		t.Fatal("Chart API errors should be surfaced")
	}
}

func TestFetchIntradayEmptyResult(t *testing.T) {
	body := chartBody([]int64{}, nil, nil, nil, nil, nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchIntraday(context.Background(), "^NSEI", "1m", "7d")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Empty result should map to ErrNoData, got %v", err)
	}
}

func TestFetchFrames(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 15, 0, 0, IST).Unix()
	timestamps := make([]int64, 6)
	var opens, highs, lows, closes, volumes []interface{}
	for i := range timestamps {
		timestamps[i] = base + int64(i)*60
		price := 100.0 + float64(i)
		opens = append(opens, price)
		highs = append(highs, price+0.5)
		lows = append(lows, price-0.5)
		closes = append(closes, price+0.25)
		volumes = append(volumes, 10)
	}
	body := chartBody(timestamps, opens, highs, lows, closes, volumes)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// One timeframe failing must not sink the others
		if r.URL.Query().Get("interval") == "15m" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(body)
	}))
	defer server.Close()

	frames, err := testClient(server.URL).FetchFrames(context.Background(), "^NSEI")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(frames["1m"]) != 6 {
		t.Errorf("Expected 6 one-minute bars, got %d", len(frames["1m"]))
	}
	if len(frames["3m"]) != 2 {
		t.Errorf("Expected 2 derived 3m bars, got %d", len(frames["3m"]))
	}
	if len(frames["15m"]) != 0 {
		t.Errorf("Failed timeframe should degrade to empty, got %d bars", len(frames["15m"]))
	}
	if len(frames["5m"]) != 6 || len(frames["1h"]) != 6 {
		t.Errorf("Expected full 5m and 1h frames, got %d / %d", len(frames["5m"]), len(frames["1h"]))
	}
}

func TestFetchFramesAllEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchFrames(context.Background(), "BOGUS")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("All frames empty should map to ErrNoData, got %v", err)
	}
}
