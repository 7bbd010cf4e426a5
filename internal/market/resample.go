package market

import (
	"sort"
	"time"
)

// Resample3m aggregates 1-minute candles into 3-minute buckets aligned to
// wall-clock boundaries. Open is the first bar's open, high/low are the
// extremes, close is the last bar's close and volume is summed. Buckets with
// fewer than 3 one-minute bars are dropped so partially formed candles never
// reach the indicators. Input is expected in ascending time order.
func Resample3m(bars []Candle) []Candle {
	if len(bars) == 0 {
		return nil
	}

	type bucket struct {
		candle Candle
		count  int
	}
	buckets := make(map[int64]*bucket)

	for _, bar := range bars {
		t := bar.Time.In(IST)
		offset := time.Duration(t.Minute()%3)*time.Minute + time.Duration(t.Second())*time.Second
		start := t.Add(-offset)
		key := start.Unix()
		b, ok := buckets[key]
		if !ok {
			c := bar
			c.Time = start
			buckets[key] = &bucket{candle: c, count: 1}
			continue
		}
		if bar.High > b.candle.High {
			b.candle.High = bar.High
		}
		if bar.Low < b.candle.Low {
			b.candle.Low = bar.Low
		}
		b.candle.Close = bar.Close
		b.candle.Volume += bar.Volume
		b.count++
	}

	keys := make([]int64, 0, len(buckets))
	for k, b := range buckets {
		if b.count >= 3 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Candle, 0, len(keys))
	for _, k := range keys {
		out = append(out, buckets[k].candle)
	}
	return out
}
