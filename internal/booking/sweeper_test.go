package booking_test

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

func TestSweepRunOnce(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4, 4)
	req := f.request(0, at(18, 0), 2)
	req.Hold = true
	_, err := f.lifecycle.Create(context.Background(), req)
	c.Assert(err, qt.IsNil)
	f.seed(f.tables[1], at(11, 0), 70*time.Minute, model.StatusPending)

	sweeper := booking.NewSweeper(f.lifecycle, f.clock, time.Minute)
	got, err := sweeper.RunOnce(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, booking.SweepResult{Pending: 1})

	f.clock.Advance(11 * time.Minute)
	got, err = sweeper.RunOnce(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, booking.SweepResult{Holds: 1})
}

func TestSweeperRunsOnInterval(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	req := f.request(0, at(18, 0), 2)
	req.Hold = true
	hold, err := f.lifecycle.Create(context.Background(), req)
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		booking.NewSweeper(f.lifecycle, f.clock, 5*time.Minute).Run(ctx)
	}()

	// The first sweep runs straight away and finds a fresh hold.
	for i := 0; i < 3; i++ {
		c.Assert(f.clock.WaitAdvance(5*time.Minute, time.Second, 1), qt.IsNil)
	}
	// Once the sweeper waits again the sweep at 12:15 has finished.
	c.Assert(f.clock.WaitAdvance(time.Minute, time.Second, 1), qt.IsNil)

	stored, err := f.lifecycle.Get(context.Background(), hold.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Status, qt.Equals, model.StatusCancelled)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		c.Fatal("sweeper did not stop")
	}
}
