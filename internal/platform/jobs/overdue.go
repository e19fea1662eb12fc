// Package jobs runs the scheduled background work: the nightly sweep that
// flips past-due pending bills to overdue.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper is the slice of the billing service the sweep needs. Satisfied by
// *billing.Service.
type Sweeper interface {
	MarkOverdue(ctx context.Context) (int, error)
}

// OverdueRunner owns the cron schedule for the overdue sweep.
type OverdueRunner struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
}

// NewOverdueRunner builds a runner on the given standard 5-field cron spec.
// The spec is validated here so a bad schedule fails at startup, not at
// first fire.
func NewOverdueRunner(spec string, sweeper Sweeper) (*OverdueRunner, error) {
	r := &OverdueRunner{
		cron:    cron.New(),
		sweeper: sweeper,
		timeout: 5 * time.Minute,
	}
	if _, err := r.cron.AddFunc(spec, r.runOnce); err != nil {
		return nil, err
	}
	return r, nil
}

// Start begins firing on schedule in a background goroutine.
func (r *OverdueRunner) Start() {
	r.cron.Start()
}

// Stop cancels the schedule and waits for an in-flight sweep to finish.
func (r *OverdueRunner) Stop() {
	<-r.cron.Stop().Done()
}

func (r *OverdueRunner) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	n, err := r.sweeper.MarkOverdue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("overdue sweep failed")
		return
	}
	log.Info().Int("bills_flipped", n).Msg("overdue sweep completed")
}
