package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/leadtriage/backend/internal/apperr"
)

// cronParser accepts standard 5-field expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler starts a qualification run on a cron schedule. Ticks that land
// while a run is active are skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	logger zerolog.Logger
}

func NewScheduler(expr string, runner *Runner, logger zerolog.Logger) (*Scheduler, error) {
	if _, err := cronParser.Parse(expr); err != nil {
		return nil, fmt.Errorf("service: schedule %q: %w", expr, err)
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithParser(cronParser)),
		runner: runner,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(expr, s.tick); err != nil {
		return nil, fmt.Errorf("service: schedule %q: %w", expr, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	run, err := s.runner.Start(context.Background())
	if apperr.Is(err, apperr.KindConflict) {
		s.logger.Info().Str("run_id", run.ID).Msg("scheduled run skipped, previous run still active")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled run failed to start")
		return
	}
	s.logger.Info().Str("run_id", run.ID).Int("leads", run.Total).Msg("scheduled run started")
}

// Run blocks until ctx is done, then waits for the cron loop to stop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
