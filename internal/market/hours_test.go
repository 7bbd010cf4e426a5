package market

import (
	"strings"
	"testing"
	"time"
)

func TestIsMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		open bool
	}{
		{"friday mid-session", time.Date(2026, 8, 28, 10, 0, 0, 0, IST), true},
		{"opening bell", time.Date(2026, 8, 28, 9, 15, 0, 0, IST), true},
		{"last minute", time.Date(2026, 8, 28, 15, 29, 0, 0, IST), true},
		{"just before open", time.Date(2026, 8, 28, 9, 14, 0, 0, IST), false},
		{"closing bell", time.Date(2026, 8, 28, 15, 30, 0, 0, IST), false},
		{"saturday", time.Date(2026, 8, 29, 10, 0, 0, 0, IST), false},
		{"sunday", time.Date(2026, 8, 30, 10, 0, 0, 0, IST), false},
	}

	for _, tt := range tests {
		if got := IsMarketOpen(tt.t); got != tt.open {
			t.Errorf("%s: expected open=%v, got %v", tt.name, tt.open, got)
		}
	}
}

func TestIsMarketOpenConvertsZone(t *testing.T) {
	// 04:30 UTC on a Friday is 10:00 IST
	if !IsMarketOpen(time.Date(2026, 8, 28, 4, 30, 0, 0, time.UTC)) {
		t.Error("UTC timestamps should be evaluated in IST")
	}
}

func TestStatusMessage(t *testing.T) {
	open := StatusMessage(time.Date(2026, 8, 28, 10, 0, 0, 0, IST))
	if !strings.Contains(open, "closes at 15:30 IST") {
		t.Errorf("Open-session message should name the close, got %q", open)
	}

	early := StatusMessage(time.Date(2026, 8, 28, 8, 0, 0, 0, IST))
	if !strings.Contains(early, "opens at 09:15 IST") {
		t.Errorf("Pre-open message should name the open, got %q", early)
	}

	late := StatusMessage(time.Date(2026, 8, 28, 16, 0, 0, 0, IST))
	if late != "Market closed for the day" {
		t.Errorf("Post-close message mismatch: %q", late)
	}

	weekend := StatusMessage(time.Date(2026, 8, 29, 10, 0, 0, 0, IST))
	if weekend != "Market closed (weekend)" {
		t.Errorf("Weekend message mismatch: %q", weekend)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("^NSEI"); got != "Nifty 50" {
		t.Errorf("Expected Nifty 50, got %s", got)
	}
	if got := DisplayName("^NSEBANK"); got != "Bank Nifty" {
		t.Errorf("Expected Bank Nifty, got %s", got)
	}
	if got := DisplayName("UNKNOWN"); got != "UNKNOWN" {
		t.Errorf("Unknown symbols should pass through, got %s", got)
	}
}

func TestMinutesIntoDay(t *testing.T) {
	if got := MinutesIntoDay(time.Date(2026, 8, 28, 4, 30, 0, 0, time.UTC)); got != 600 {
		t.Errorf("04:30 UTC should be 600 IST minutes, got %d", got)
	}
	if got := MinutesIntoDay(time.Date(2026, 8, 28, 14, 30, 0, 0, IST)); got != 870 {
		t.Errorf("14:30 IST should be 870 minutes, got %d", got)
	}
}

func TestStartOfDay(t *testing.T) {
	noon := time.Date(2026, 8, 28, 12, 0, 0, 0, IST)
	midnight := StartOfDay(noon)
	if midnight.Hour() != 0 || midnight.Minute() != 0 || midnight.Day() != 28 {
		t.Errorf("Expected midnight IST on the 28th, got %v", midnight)
	}
}

func TestFramesSpotPrice(t *testing.T) {
	frames := Frames{
		"1m": {{Close: 101}},
		"5m": {{Close: 105}},
	}
	if got := frames.SpotPrice(); got != 101 {
		t.Errorf("Spot should come from the most granular frame, got %v", got)
	}

	frames = Frames{"1m": nil, "15m": {{Close: 115}}}
	if got := frames.SpotPrice(); got != 115 {
		t.Errorf("Empty frames should be skipped, got %v", got)
	}

	if got := (Frames{}).SpotPrice(); got != 0 {
		t.Errorf("No data should yield zero spot, got %v", got)
	}
}

func TestFramesEmpty(t *testing.T) {
	if !(Frames{"1m": nil}).Empty() {
		t.Error("Frames with only nil slices should be empty")
	}
	if (Frames{"1m": {{Close: 1}}}).Empty() {
		t.Error("Frames with candles should not be empty")
	}
}
