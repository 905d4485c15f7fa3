package booking

import (
	"context"
	"time"

	"github.com/juju/clock"
)

// SweepResult counts the reservations one sweep cancelled.
type SweepResult struct {
	Holds   int64 `json:"holds"`
	Pending int64 `json:"pending"`
}

// Sweep runs both expiry passes with the configured thresholds.  Each pass
// is a single conditional bulk update, so concurrent sweeps are harmless.
func (l *Lifecycle) Sweep(ctx context.Context) (SweepResult, error) {
	p := l.ops.Policy()
	var r SweepResult
	var err error
	if r.Holds, err = l.ExpireStaleHolds(ctx, p.HoldExpiry); err != nil {
		return r, err
	}
	if r.Pending, err = l.ExpireOverdueConfirmed(ctx, p.PendingTolerance); err != nil {
		return r, err
	}
	if r.Holds+r.Pending > 0 {
		logger.Infof("sweep cancelled %d holds and %d overdue pending reservations", r.Holds, r.Pending)
	} else {
		logger.Debugf("sweep: nothing to expire")
	}
	return r, nil
}

// Sweeper runs Lifecycle.Sweep on a fixed interval.
type Sweeper struct {
	lifecycle *Lifecycle
	clock     clock.Clock
	interval  time.Duration
}

// NewSweeper returns a sweeper that runs every interval on clk.
func NewSweeper(l *Lifecycle, clk clock.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{lifecycle: l, clock: clk, interval: interval}
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	return s.lifecycle.Sweep(ctx)
}

// Run sweeps immediately and then once per interval until ctx is done.
// Failed sweeps are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		if _, err := s.RunOnce(ctx); err != nil {
			logger.Errorf("sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.interval):
		}
	}
}
