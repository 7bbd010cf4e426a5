package checkpoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stock-intelligence/internal/decision"
	"stock-intelligence/internal/market"
)

func TestValidID(t *testing.T) {
	for _, id := range []string{"0915", "0930", "1000", "1130", "1300", "1400", "1500"} {
		if !ValidID(id) {
			t.Errorf("Expected %s to be a valid checkpoint", id)
		}
	}
	for _, id := range []string{"0916", "", "morning", "2100"} {
		if ValidID(id) {
			t.Errorf("Expected %s to be invalid", id)
		}
	}
}

func TestValidIDs(t *testing.T) {
	ids := ValidIDs()
	if len(ids) != 7 {
		t.Fatalf("Expected 7 checkpoint ids, got %d", len(ids))
	}
	if ids[0] != "0915" || ids[6] != "1500" {
		t.Errorf("Checkpoint ids out of order: %v", ids)
	}
}

func TestTTLUntilExpiry(t *testing.T) {
	evening := time.Date(2026, 8, 28, 18, 0, 0, 0, market.IST)
	if ttl := ttlUntilExpiry(evening); ttl != 3*time.Hour {
		t.Errorf("18:00 should expire in 3h, got %v", ttl)
	}

	// Exactly at the expiry hour the key rolls to the next day
	atExpiry := time.Date(2026, 8, 28, 21, 0, 0, 0, market.IST)
	if ttl := ttlUntilExpiry(atExpiry); ttl != 24*time.Hour {
		t.Errorf("21:00 should roll to next day, got %v", ttl)
	}

	// Right at the edge the TTL is floored so the save stays readable
	nearExpiry := time.Date(2026, 8, 28, 20, 59, 30, 0, market.IST)
	if ttl := ttlUntilExpiry(nearExpiry); ttl != minTTL {
		t.Errorf("Near-expiry saves should get the minimum TTL, got %v", ttl)
	}
}

func TestCronSpec(t *testing.T) {
	spec, err := cronSpec("09:15")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if spec != "15 9 * * 1-5" {
		t.Errorf("Expected weekday cron spec, got %q", spec)
	}

	spec, err = cronSpec("15:00")
	if err != nil || spec != "0 15 * * 1-5" {
		t.Errorf("Expected '0 15 * * 1-5', got %q (%v)", spec, err)
	}

	if _, err := cronSpec("0915"); err == nil {
		t.Error("Missing colon should be rejected")
	}
	if _, err := cronSpec("aa:bb"); err == nil {
		t.Error("Non-numeric time should be rejected")
	}
}

func TestStoreKey(t *testing.T) {
	s := NewStore(nil)
	key := s.key("2026-08-28", "0915", "^NSEI")
	if key != "checkpoint:2026-08-28:0915:^NSEI" {
		t.Errorf("Unexpected key format: %s", key)
	}
}

func TestStoreMemoryFallback(t *testing.T) {
	s := NewStore(nil)
	if s.IsAvailable() {
		t.Error("Store without Redis should not report available")
	}

	snap := &Snapshot{CaptureID: "test", ScalpSignal: decision.ScalpBuy}
	saved := s.Save(context.Background(), "2026-08-28", "0915", "^NSEI", snap)
	if saved {
		t.Error("Save without Redis should report failure")
	}

	// The in-memory cache still serves reads in this process
	got := s.Load(context.Background(), "2026-08-28", "0915", "^NSEI")
	if got == nil || got.CaptureID != "test" {
		t.Errorf("Expected cached snapshot back, got %+v", got)
	}

	if missing := s.Load(context.Background(), "2026-08-28", "1000", "^NSEI"); missing != nil {
		t.Errorf("Uncaptured slot should load nil, got %+v", missing)
	}
}

func TestStoreLoadAll(t *testing.T) {
	s := NewStore(nil)
	s.Save(context.Background(), "2026-08-28", "1300", "^NSEI", &Snapshot{CaptureID: "lunch"})

	panels := s.LoadAll(context.Background(), "2026-08-28", "^NSEI")
	if len(panels) != 7 {
		t.Fatalf("Expected 7 panels, got %d", len(panels))
	}

	for _, panel := range panels {
		if panel.ID == "1300" {
			if panel.Data == nil || panel.Data.CaptureID != "lunch" {
				t.Errorf("Captured slot should carry data, got %+v", panel.Data)
			}
		} else if panel.Data != nil {
			t.Errorf("Slot %s should be empty, got %+v", panel.ID, panel.Data)
		}
	}
}

func TestNewSnapshot(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, market.IST)
	result := decision.Result{
		PromptVersion: 2,
		Index:         "Nifty 50",
		SpotPrice:     24500,
		ScalpSignal:   decision.ScalpBuy,
		Execute:       "Strong",
	}

	snap := NewSnapshot(result, now)
	if snap.CaptureID == "" {
		t.Error("Snapshot should carry a capture id")
	}
	if _, err := time.Parse(time.RFC3339, snap.CapturedAt); err != nil {
		t.Errorf("CapturedAt should be RFC3339, got %q: %v", snap.CapturedAt, err)
	}
	if !snap.IsMarketOpen {
		t.Error("Friday 10:00 IST should be market open")
	}
	if snap.Index != "Nifty 50" || snap.SpotPrice != 24500 || snap.Execute != "Strong" {
		t.Errorf("Snapshot should mirror the result, got %+v", snap)
	}
}

// stubFetcher serves canned frames or a canned error
type stubFetcher struct {
	frames market.Frames
	err    error
	calls  int
}

func (f *stubFetcher) FetchFrames(ctx context.Context, symbol string) (market.Frames, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.frames, nil
}

func stubFrames() market.Frames {
	candles := make([]market.Candle, 30)
	for i := range candles {
		price := 24442.0 + float64(i)*2
		candles[i] = market.Candle{
			Time:   time.Date(2026, 8, 28, 9, 15+i, 0, 0, market.IST),
			Open:   price - 1,
			High:   price + 0.2,
			Low:    price - 1.2,
			Close:  price,
			Volume: 1000,
		}
	}
	return market.Frames{"1m": candles, "3m": candles, "5m": candles, "15m": candles, "1h": candles}
}

func TestRunnerCapture(t *testing.T) {
	fetcher := &stubFetcher{frames: stubFrames()}
	store := NewStore(nil)
	runner := NewRunner(fetcher, decision.NewPipeline(nil), store, zerolog.Nop())

	snap, saved, err := runner.Capture(context.Background(), "1000", "^NSEI")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if saved {
		t.Error("Capture without Redis should report save failure")
	}
	if snap == nil || snap.PromptVersion != 2 || snap.Index != "Nifty 50" {
		t.Errorf("Snapshot should carry the analysis result, got %+v", snap)
	}

	// The snapshot must be readable back from the same slot
	if got := store.Load(context.Background(), TodayIST(), "1000", "^NSEI"); got == nil {
		t.Error("Captured snapshot should be loadable")
	}
}

func TestRunnerCaptureFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	runner := NewRunner(fetcher, decision.NewPipeline(nil), NewStore(nil), zerolog.Nop())

	if _, _, err := runner.Capture(context.Background(), "1000", "^NSEI"); err == nil {
		t.Error("Fetch errors should propagate")
	}
}

func TestRunnerCaptureAll(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	runner := NewRunner(fetcher, decision.NewPipeline(nil), NewStore(nil), zerolog.Nop())

	// Per-symbol failures are logged and never abort the loop
	runner.CaptureAll(context.Background(), "1000", []string{"^NSEI", "^NSEBANK"})
	if fetcher.calls != 2 {
		t.Errorf("Expected both symbols attempted, got %d calls", fetcher.calls)
	}
}
