package checkpoint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"stock-intelligence/internal/market"
)

// Scheduler triggers checkpoint captures at the configured market times,
// weekdays only, in IST
type Scheduler struct {
	cron    *cron.Cron
	runner  *Runner
	symbols []string
	log     zerolog.Logger
}

// NewScheduler creates a scheduler capturing the given symbols at every
// checkpoint slot
func NewScheduler(runner *Runner, symbols []string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(market.IST)),
		runner:  runner,
		symbols: symbols,
		log:     log,
	}
}

// Start registers one weekday cron entry per checkpoint and starts the cron
// loop
func (s *Scheduler) Start() error {
	for _, cp := range Checkpoints {
		spec, err := cronSpec(cp.Time)
		if err != nil {
			return fmt.Errorf("register checkpoint %s task: %w", cp.ID, err)
		}

		id := cp.ID
		if _, err := s.cron.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			s.runner.CaptureAll(ctx, id, s.symbols)
		}); err != nil {
			return fmt.Errorf("register checkpoint %s task: %w", cp.ID, err)
		}
	}

	s.cron.Start()
	s.log.Info().Int("checkpoints", len(Checkpoints)).Strs("symbols", s.symbols).
		Msg("checkpoint scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running captures to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("checkpoint scheduler stopped")
}

// cronSpec converts an "HH:MM" checkpoint time into a weekday cron spec
func cronSpec(hhmm string) (string, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid checkpoint time %q", hhmm)
	}
	var hour, minute int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &hour, &minute); err != nil {
		return "", fmt.Errorf("invalid checkpoint time %q: %w", hhmm, err)
	}
	return fmt.Sprintf("%d %d * * 1-5", minute, hour), nil
}
