package checkpoint

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stock-intelligence/internal/decision"
	"stock-intelligence/internal/market"
	"stock-intelligence/internal/metrics"
)

// FrameFetcher fetches all analysis timeframes for one symbol
type FrameFetcher interface {
	FetchFrames(ctx context.Context, symbol string) (market.Frames, error)
}

// TodayIST returns today's date in IST as YYYY-MM-DD
func TodayIST() string {
	return time.Now().In(market.IST).Format("2006-01-02")
}

// Runner captures analysis snapshots into checkpoint slots. It is driven by
// the scheduler at market times and by the trigger endpoint for manual runs.
type Runner struct {
	fetcher  FrameFetcher
	pipeline *decision.Pipeline
	store    *Store
	log      zerolog.Logger
}

// NewRunner wires the capture dependencies
func NewRunner(fetcher FrameFetcher, pipeline *decision.Pipeline, store *Store, log zerolog.Logger) *Runner {
	return &Runner{
		fetcher:  fetcher,
		pipeline: pipeline,
		store:    store,
		log:      log,
	}
}

// Capture runs the analysis pipeline for one symbol and saves the snapshot
// into the given checkpoint slot. The bool reports whether the save reached
// Redis.
func (r *Runner) Capture(ctx context.Context, checkpointID, symbol string) (*Snapshot, bool, error) {
	now := time.Now()

	frames, err := r.fetcher.FetchFrames(ctx, symbol)
	if err != nil {
		return nil, false, err
	}

	result := r.pipeline.Run(frames, symbol, now)
	snap := NewSnapshot(result, now)

	saved := r.store.Save(ctx, TodayIST(), checkpointID, symbol, snap)
	if saved {
		metrics.CheckpointCaptures.WithLabelValues("saved").Inc()
	} else {
		metrics.CheckpointCaptures.WithLabelValues("store_failed").Inc()
	}
	return snap, saved, nil
}

// CaptureAll captures every configured symbol for a checkpoint slot.
// Failures are logged per symbol and never abort the remaining captures.
func (r *Runner) CaptureAll(ctx context.Context, checkpointID string, symbols []string) {
	for _, symbol := range symbols {
		snap, saved, err := r.Capture(ctx, checkpointID, symbol)
		if err != nil {
			metrics.CheckpointCaptures.WithLabelValues("fetch_failed").Inc()
			r.log.Error().Err(err).
				Str("checkpoint", checkpointID).
				Str("symbol", symbol).
				Msg("checkpoint capture failed")
			continue
		}
		r.log.Info().
			Str("checkpoint", checkpointID).
			Str("symbol", symbol).
			Str("signal", snap.ScalpSignal).
			Bool("saved", saved).
			Msg("checkpoint captured")
	}
}
