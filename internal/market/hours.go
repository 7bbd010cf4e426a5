package market

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30)
var IST = time.FixedZone("IST", 5*3600+30*60)

// NSE trading hours in IST
const (
	openHour    = 9
	openMinute  = 15
	closeHour   = 15
	closeMinute = 30
)

var displayNames = map[string]string{
	"^NSEI":    "Nifty 50",
	"^NSEBANK": "Bank Nifty",
	"^BSESN":   "Sensex",
}

// DisplayName returns a human-readable name for an index symbol,
// falling back to the symbol itself
func DisplayName(symbol string) string {
	if name, ok := displayNames[symbol]; ok {
		return name
	}
	return symbol
}

// IsMarketOpen returns true if t falls within NSE trading hours
// (9:15 AM - 3:30 PM IST, Mon-Fri)
func IsMarketOpen(t time.Time) bool {
	ist := t.In(IST)
	wd := ist.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	hm := ist.Hour()*60 + ist.Minute()
	return hm >= openHour*60+openMinute && hm < closeHour*60+closeMinute
}

// StatusMessage returns a human-readable market status for t
func StatusMessage(t time.Time) string {
	ist := t.In(IST)
	if IsMarketOpen(ist) {
		return fmt.Sprintf("Market open, closes at %02d:%02d IST", closeHour, closeMinute)
	}
	if wd := ist.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return "Market closed (weekend)"
	}
	hm := ist.Hour()*60 + ist.Minute()
	if hm < openHour*60+openMinute {
		return fmt.Sprintf("Market opens at %02d:%02d IST", openHour, openMinute)
	}
	return "Market closed for the day"
}

// MinutesIntoDay returns t's time of day in IST as minutes since midnight
func MinutesIntoDay(t time.Time) int {
	ist := t.In(IST)
	return ist.Hour()*60 + ist.Minute()
}

// StartOfDay returns midnight IST for t's date
func StartOfDay(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, IST)
}
