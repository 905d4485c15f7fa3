package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	qt "github.com/frankban/quicktest"
	"github.com/juju/clock/testclock"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/repository/memory"
)

const zone = "America/Mexico_City"

var mexico = func() *time.Location {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		panic(err)
	}
	return loc
}()

// at returns a local time on Wednesday 2026-10-14 in the branch zone.
func at(hour, min int) time.Time {
	return time.Date(2026, 10, 14, hour, min, 0, 0, mexico)
}

type recordingNotifier struct {
	mu    sync.Mutex
	err   error
	calls []model.Reservation
}

func (n *recordingNotifier) ReservationConfirmed(ctx context.Context, res model.Reservation, branch model.Branch) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, res)
	return n.err
}

type fixture struct {
	store     *memory.Store
	branch    model.Branch
	tables    []model.Table
	customers []model.Customer
	clock     *testclock.Clock
	notifier  *recordingNotifier
	lifecycle *booking.Lifecycle
}

// newFixture builds a branch open 12:00-23:00 at noon on the test date,
// with two customers and one table per capacity.
func newFixture(c *qt.C, capacities ...int) *fixture {
	st := memory.New()
	f := &fixture{
		store: st,
		branch: st.AddBranch(model.Branch{
			Name:        "Centro",
			TimeZone:    zone,
			OpeningHour: 12,
			ClosingHour: 23,
		}),
		clock:    testclock.NewClock(at(12, 0)),
		notifier: &recordingNotifier{},
	}
	for i, capacity := range capacities {
		f.tables = append(f.tables, st.AddTable(model.Table{
			BranchID: f.branch.ID,
			Number:   i + 1,
			Capacity: capacity,
		}))
	}
	f.customers = []model.Customer{
		st.AddCustomer(model.Customer{Name: "Ana", Email: "ana@example.com", Phone: "5550001"}),
		st.AddCustomer(model.Customer{Name: "Luis", Email: "luis@example.com", Phone: "5550002"}),
	}
	ops := allocation.NewTimeOps(allocation.DefaultPolicy())
	f.lifecycle = booking.NewLifecycle(st, ops, f.clock, f.notifier)
	return f
}

func (f *fixture) request(customer int, start time.Time, party int) booking.Request {
	id := f.customers[customer].ID
	return booking.Request{
		BranchID:   f.branch.ID,
		CustomerID: &id,
		PartySize:  party,
		Start:      start,
	}
}

func (f *fixture) seed(table model.Table, start time.Time, d time.Duration, status model.Status) model.Reservation {
	tableID := table.ID
	return f.store.AddReservation(model.Reservation{
		Folio:     "SEED-" + start.Format("1504"),
		BranchID:  f.branch.ID,
		TableID:   &tableID,
		PartySize: 2,
		StartUTC:  start.UTC(),
		EndUTC:    start.Add(d).UTC(),
		TimeZone:  zone,
		Status:    status,
	})
}

func TestCreateAssignsSmallestTable(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 2, 4, 6, 10)

	res, err := f.lifecycle.Create(context.Background(), f.request(0, at(18, 0), 3))
	c.Assert(err, qt.IsNil)
	c.Assert(res.ID, qt.Not(qt.Equals), uint64(0))
	c.Assert(res.Folio, qt.Matches, `20261014-[0-9A-F]{6}`)
	c.Assert(res.Status, qt.Equals, model.StatusPending)
	c.Assert(res.OnTable(f.tables[1].ID), qt.IsTrue)
	c.Assert(res.StartUTC, qt.Equals, at(18, 0).UTC())
	c.Assert(res.EndUTC, qt.Equals, at(19, 10).UTC())
	c.Assert(res.TimeZone, qt.Equals, zone)
	c.Assert(res.Contact, qt.DeepEquals, model.Contact{Name: "Ana", Email: "ana@example.com", Phone: "5550001"})

	stored, err := f.lifecycle.GetByFolio(context.Background(), res.Folio)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.ID, qt.Equals, res.ID)
}

func TestCreateLargePartyAtPeak(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4, 6)

	res, err := f.lifecycle.Create(context.Background(), f.request(0, at(20, 0), 6))
	c.Assert(err, qt.IsNil)
	c.Assert(res.Duration(), qt.Equals, 105*time.Minute)
	c.Assert(res.OnTable(f.tables[1].ID), qt.IsTrue)
}

func TestCreateValidation(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 2, 4)
	id := f.customers[0].ID

	tests := []struct {
		about string
		req   booking.Request
		field string
	}{{
		about: "empty party",
		req:   f.request(0, at(18, 0), 0),
		field: "party_size",
	}, {
		about: "no start",
		req:   booking.Request{BranchID: f.branch.ID, CustomerID: &id, PartySize: 2},
		field: "start",
	}, {
		about: "start in the past",
		req:   f.request(0, at(11, 30), 2),
		field: "start",
	}, {
		about: "another day",
		req:   f.request(0, at(18, 0).AddDate(0, 0, 1), 2),
		field: "start",
	}, {
		about: "party larger than any table",
		req:   f.request(0, at(18, 0), 9),
		field: "party_size",
	}, {
		about: "no customer",
		req:   booking.Request{BranchID: f.branch.ID, PartySize: 2, Start: at(18, 0)},
		field: "customer",
	}, {
		about: "force without staff",
		req: booking.Request{
			BranchID: f.branch.ID, CustomerID: &id, PartySize: 2, Start: at(18, 0), Force: true,
		},
		field: "force",
	}, {
		about: "table of another branch",
		req: booking.Request{
			BranchID: f.branch.ID, TableID: 999, PartySize: 2, Start: at(18, 0), Staff: true,
		},
		field: "table_id",
	}}
	for _, test := range tests {
		c.Run(test.about, func(c *qt.C) {
			_, err := f.lifecycle.Create(context.Background(), test.req)
			var verr *allocation.ValidationError
			c.Assert(err, qt.ErrorAs, &verr)
			c.Assert(verr.Field, qt.Equals, test.field)
		})
	}
}

func TestCreateRequiresPeakLead(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	f.clock.Advance(time.Hour)

	_, err := f.lifecycle.Create(context.Background(), f.request(0, at(13, 10), 2))
	var verr *allocation.ValidationError
	c.Assert(err, qt.ErrorAs, &verr)
	c.Assert(verr.Reason, qt.Equals, "needs at least 15 minutes notice")

	_, err = f.lifecycle.Create(context.Background(), f.request(0, at(13, 15), 2))
	c.Assert(err, qt.IsNil)
}

func TestStaffBookingSkipsSameDayRule(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)

	res, err := f.lifecycle.Create(context.Background(), booking.Request{
		BranchID:  f.branch.ID,
		PartySize: 2,
		Start:     at(18, 0).AddDate(0, 0, 1),
		Staff:     true,
		Contact:   model.Contact{Name: "Walk-in", Phone: "5550100"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(res.StaffCreated, qt.IsTrue)
	c.Assert(res.CustomerID, qt.IsNil)
	c.Assert(res.Contact.Name, qt.Equals, "Walk-in")
	c.Assert(res.Folio, qt.Matches, `20261015-.*`)
}

func TestCreateAlreadyActive(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4, 4)

	first, err := f.lifecycle.Create(context.Background(), f.request(0, at(18, 0), 2))
	c.Assert(err, qt.IsNil)

	_, err = f.lifecycle.Create(context.Background(), f.request(0, at(20, 0), 2))
	var active *allocation.AlreadyActiveError
	c.Assert(err, qt.ErrorAs, &active)
	c.Assert(active.Folio, qt.Equals, first.Folio)
	c.Assert(active.StartUTC, qt.Equals, first.StartUTC)

	_, err = f.lifecycle.Cancel(context.Background(), first.ID)
	c.Assert(err, qt.IsNil)
	_, err = f.lifecycle.Create(context.Background(), f.request(0, at(20, 0), 2))
	c.Assert(err, qt.IsNil)
}

func TestStaffExplicitTableConflict(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4, 4)
	f.seed(f.tables[0], at(18, 0), 70*time.Minute, model.StatusConfirmed)

	_, err := f.lifecycle.Create(context.Background(), booking.Request{
		BranchID:  f.branch.ID,
		TableID:   f.tables[0].ID,
		PartySize: 2,
		Start:     at(18, 30),
		Staff:     true,
		Contact:   model.Contact{Name: "Walk-in"},
	})
	var conflict *allocation.ConflictError
	c.Assert(err, qt.ErrorAs, &conflict)
	c.Assert(conflict.TableID, qt.Equals, f.tables[0].ID)
	c.Assert(conflict.NextAvailable.Equal(at(19, 10)), qt.IsTrue)
	c.Assert(conflict.HoldMinutes, qt.Equals, 70)
	c.Assert(conflict.Reason, qt.Equals, "table 1 is busy until 19:10 (tables are held for 70 minutes)")
}

func TestStaffForceOnProtectedTable(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 10)
	req := booking.Request{
		BranchID:  f.branch.ID,
		TableID:   f.tables[0].ID,
		PartySize: 2,
		Start:     at(18, 0),
		Staff:     true,
		Contact:   model.Contact{Name: "Walk-in"},
	}

	_, err := f.lifecycle.Create(context.Background(), req)
	var conflict *allocation.ConflictError
	c.Assert(err, qt.ErrorAs, &conflict)
	c.Assert(conflict.Reason, qt.Matches, `table 1 is kept for larger parties .*`)

	req.Force = true
	res, err := f.lifecycle.Create(context.Background(), req)
	c.Assert(err, qt.IsNil)
	c.Assert(res.OnTable(f.tables[0].ID), qt.IsTrue)
}

func TestCreateFullBranchReportsNextOpening(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	f.seed(f.tables[0], at(18, 0), 70*time.Minute, model.StatusConfirmed)
	f.seed(f.tables[0], at(19, 10), 80*time.Minute, model.StatusPending)

	_, err := f.lifecycle.Create(context.Background(), f.request(0, at(18, 30), 2))
	var conflict *allocation.ConflictError
	c.Assert(err, qt.ErrorAs, &conflict)
	c.Assert(conflict.TableID, qt.Equals, uint64(0))
	c.Assert(conflict.NextAvailable.Equal(at(20, 30)), qt.IsTrue)
	c.Assert(conflict.Reason, qt.Equals, "no table available at 18:30; next opening at 20:30 (tables are held for 70 minutes)")
}

func TestConcurrentCreatesForLastTable(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)

	var wg sync.WaitGroup
	errs := make([]error, len(f.customers))
	for i := range f.customers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.lifecycle.Create(context.Background(), f.request(i, at(18, 0), 2))
		}()
	}
	wg.Wait()

	var succeeded, conflicts int
	for _, err := range errs {
		var conflict *allocation.ConflictError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &conflict):
			conflicts++
		default:
			c.Fatalf("unexpected error: %v", err)
		}
	}
	c.Assert(succeeded, qt.Equals, 1)
	c.Assert(conflicts, qt.Equals, 1)
}

func TestConfirmNotifies(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	res, err := f.lifecycle.Create(context.Background(), f.request(0, at(18, 0), 2))
	c.Assert(err, qt.IsNil)

	confirmed, err := f.lifecycle.Confirm(context.Background(), res.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(confirmed.Status, qt.Equals, model.StatusConfirmed)
	c.Assert(f.notifier.calls, qt.HasLen, 1)
	c.Assert(f.notifier.calls[0].Folio, qt.Equals, res.Folio)
}

func TestConfirmSurvivesNotifierFailure(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	f.notifier.err = errors.New("broker down")
	res, err := f.lifecycle.Create(context.Background(), f.request(0, at(18, 0), 2))
	c.Assert(err, qt.IsNil)

	_, err = f.lifecycle.Confirm(context.Background(), res.ID)
	c.Assert(err, qt.IsNil)
	stored, err := f.lifecycle.Get(context.Background(), res.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Status, qt.Equals, model.StatusConfirmed)
}

func TestInvalidTransitions(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	res, err := f.lifecycle.Create(context.Background(), f.request(0, at(18, 0), 2))
	c.Assert(err, qt.IsNil)

	_, err = f.lifecycle.MarkNoShow(context.Background(), res.ID)
	var invalid *allocation.InvalidTransitionError
	c.Assert(err, qt.ErrorAs, &invalid)
	c.Assert(invalid.From, qt.Equals, model.StatusPending)
	c.Assert(invalid.To, qt.Equals, model.StatusNoShow)

	_, err = f.lifecycle.Cancel(context.Background(), res.ID)
	c.Assert(err, qt.IsNil)
	_, err = f.lifecycle.Confirm(context.Background(), res.ID)
	c.Assert(err, qt.ErrorAs, &invalid)
	c.Assert(invalid.From, qt.Equals, model.StatusCancelled)
	c.Assert(f.notifier.calls, qt.HasLen, 0)

	_, err = f.lifecycle.Cancel(context.Background(), 12345)
	c.Assert(err, qt.ErrorIs, repository.ErrNotFound)
}

func TestHoldLosesTableBeforeConfirm(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	req := f.request(0, at(18, 0), 2)
	req.Hold = true
	hold, err := f.lifecycle.Create(context.Background(), req)
	c.Assert(err, qt.IsNil)
	c.Assert(hold.Status, qt.Equals, model.StatusHold)

	// A hold does not occupy its table, so a second guest can book it.
	other, err := f.lifecycle.Create(context.Background(), f.request(1, at(18, 0), 2))
	c.Assert(err, qt.IsNil)
	c.Assert(*other.TableID, qt.Equals, *hold.TableID)

	got, err := f.lifecycle.Confirm(context.Background(), hold.ID)
	var conflict *allocation.ConflictError
	c.Assert(err, qt.ErrorAs, &conflict)
	c.Assert(conflict.NextAvailable.Equal(at(19, 10)), qt.IsTrue)
	c.Assert(got.Status, qt.Equals, model.StatusCancelled)

	stored, err := f.lifecycle.Get(context.Background(), hold.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Status, qt.Equals, model.StatusCancelled)
	c.Assert(f.notifier.calls, qt.HasLen, 0)
}

func TestMarkNoShowAfterTolerance(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	res, err := f.lifecycle.Create(context.Background(), f.request(0, at(18, 0), 2))
	c.Assert(err, qt.IsNil)
	_, err = f.lifecycle.Confirm(context.Background(), res.ID)
	c.Assert(err, qt.IsNil)

	_, err = f.lifecycle.MarkNoShow(context.Background(), res.ID)
	var verr *allocation.ValidationError
	c.Assert(err, qt.ErrorAs, &verr)
	c.Assert(verr.Reason, qt.Matches, `reservation .* can be marked no-show from 18:06`)

	f.clock.Advance(6*time.Hour + 6*time.Minute)
	got, err := f.lifecycle.MarkNoShow(context.Background(), res.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, model.StatusNoShow)
}

func TestExpireStaleHolds(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	req := f.request(0, at(18, 0), 2)
	req.Hold = true
	hold, err := f.lifecycle.Create(context.Background(), req)
	c.Assert(err, qt.IsNil)

	f.clock.Advance(5 * time.Minute)
	n, err := f.lifecycle.ExpireStaleHolds(context.Background(), 10*time.Minute)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))

	f.clock.Advance(10 * time.Minute)
	n, err = f.lifecycle.ExpireStaleHolds(context.Background(), 10*time.Minute)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(1))

	n, err = f.lifecycle.ExpireStaleHolds(context.Background(), 10*time.Minute)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))

	stored, err := f.lifecycle.Get(context.Background(), hold.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Status, qt.Equals, model.StatusCancelled)
}

func TestExpireOverduePending(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4, 4)
	pending, err := f.lifecycle.Create(context.Background(), f.request(0, at(18, 0), 2))
	c.Assert(err, qt.IsNil)
	confirmed, err := f.lifecycle.Create(context.Background(), f.request(1, at(18, 0), 2))
	c.Assert(err, qt.IsNil)
	_, err = f.lifecycle.Confirm(context.Background(), confirmed.ID)
	c.Assert(err, qt.IsNil)

	f.clock.Advance(6*time.Hour + 5*time.Minute)
	n, err := f.lifecycle.ExpireOverdueConfirmed(context.Background(), 6*time.Minute)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))

	f.clock.Advance(2 * time.Minute)
	n, err = f.lifecycle.ExpireOverdueConfirmed(context.Background(), 6*time.Minute)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(1))

	stored, err := f.lifecycle.Get(context.Background(), pending.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Status, qt.Equals, model.StatusCancelled)
	stored, err = f.lifecycle.Get(context.Background(), confirmed.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Status, qt.Equals, model.StatusConfirmed)
}

func TestMoveAndCandidates(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 2, 4, 10)
	res, err := f.lifecycle.Create(context.Background(), f.request(0, at(18, 0), 2))
	c.Assert(err, qt.IsNil)
	c.Assert(res.OnTable(f.tables[0].ID), qt.IsTrue)

	cands, err := f.lifecycle.Candidates(context.Background(), res.ID, false)
	c.Assert(err, qt.IsNil)
	c.Assert(cands, qt.HasLen, 1)
	c.Assert(cands[0].Table.ID, qt.Equals, f.tables[1].ID)

	result, err := f.lifecycle.Move(context.Background(), res.ID, f.tables[2].ID, false)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Moved, qt.IsFalse)
	c.Assert(result.Reason, qt.Equals, "table 3 is kept for larger parties")

	result, err = f.lifecycle.Move(context.Background(), res.ID, f.tables[1].ID, false)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Moved, qt.IsTrue)
	c.Assert(result.Reservation.OnTable(f.tables[1].ID), qt.IsTrue)

	_, err = f.lifecycle.Move(context.Background(), res.ID, 999, false)
	var verr *allocation.ValidationError
	c.Assert(err, qt.ErrorAs, &verr)
	c.Assert(verr.Field, qt.Equals, "table_id")
}

func TestAvailability(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 2, 4)
	f.seed(f.tables[1], at(18, 0), 70*time.Minute, model.StatusConfirmed)

	listing, err := f.lifecycle.Availability(context.Background(), f.branch.ID, 0, at(0, 0).AddDate(0, 0, 1), 3)
	c.Assert(err, qt.IsNil)
	c.Assert(listing, qt.HasLen, 1)
	c.Assert(listing[0].Table.ID, qt.Equals, f.tables[1].ID)
	c.Assert(listing[0].Slots, qt.HasLen, 40)

	listing, err = f.lifecycle.Availability(context.Background(), f.branch.ID, f.tables[1].ID, at(0, 0), 2)
	c.Assert(err, qt.IsNil)
	c.Assert(listing, qt.HasLen, 1)
	c.Assert(listing[0].Slots, qt.Not(qt.Contains), at(18, 0))

	_, err = f.lifecycle.Availability(context.Background(), f.branch.ID, 999, at(0, 0), 2)
	var verr *allocation.ValidationError
	c.Assert(err, qt.ErrorAs, &verr)
	c.Assert(verr.Field, qt.Equals, "table_id")

	_, err = f.lifecycle.Availability(context.Background(), f.branch.ID, 0, at(0, 0), 0)
	c.Assert(err, qt.ErrorAs, &verr)
	c.Assert(verr.Field, qt.Equals, "party_size")
}

func TestBlocks(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)

	_, err := f.lifecycle.CreateBlock(context.Background(), model.ManualBlock{
		BranchID: f.branch.ID,
		StartUTC: at(20, 0),
		EndUTC:   at(18, 0),
	})
	var verr *allocation.ValidationError
	c.Assert(err, qt.ErrorAs, &verr)

	block, err := f.lifecycle.CreateBlock(context.Background(), model.ManualBlock{
		BranchID: f.branch.ID,
		StartUTC: at(18, 0),
		EndUTC:   at(20, 0),
		Reason:   "private event",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(block.CreatedAt, qt.Equals, at(12, 0).UTC())

	_, err = f.lifecycle.Create(context.Background(), f.request(0, at(19, 0), 2))
	var conflict *allocation.ConflictError
	c.Assert(err, qt.ErrorAs, &conflict)

	blocks, err := f.lifecycle.Blocks(context.Background(), f.branch.ID, at(0, 0))
	c.Assert(err, qt.IsNil)
	c.Assert(blocks, qt.HasLen, 1)

	err = f.lifecycle.DeleteBlock(context.Background(), f.branch.ID, block.ID)
	c.Assert(err, qt.IsNil)
	_, err = f.lifecycle.Create(context.Background(), f.request(0, at(19, 0), 2))
	c.Assert(err, qt.IsNil)

	err = f.lifecycle.DeleteBlock(context.Background(), f.branch.ID, block.ID)
	c.Assert(err, qt.ErrorIs, repository.ErrNotFound)
}

func TestDaySheet(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4, 4)
	f.seed(f.tables[0], at(20, 0), 70*time.Minute, model.StatusConfirmed)
	f.seed(f.tables[1], at(13, 0), 70*time.Minute, model.StatusCancelled)
	f.seed(f.tables[0], at(13, 0).AddDate(0, 0, 1), 70*time.Minute, model.StatusPending)

	sheet, err := f.lifecycle.DaySheet(context.Background(), f.branch.ID, at(0, 0))
	c.Assert(err, qt.IsNil)
	c.Assert(sheet, qt.HasLen, 2)
	c.Assert(sheet[0].StartUTC, qt.Equals, at(13, 0).UTC())
	c.Assert(sheet[1].StartUTC, qt.Equals, at(20, 0).UTC())
}

func TestCreateWithinOpeningHours(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4, 4, 4)

	res, err := f.lifecycle.Create(context.Background(), f.request(0, at(21, 50), 2))
	c.Assert(err, qt.IsNil)
	c.Assert(res.EndUTC, qt.Equals, at(23, 0).UTC())

	tests := []struct {
		about string
		start time.Time
		err   string
	}{{
		about: "runs past closing",
		start: at(22, 45),
		err:   "invalid start: 22:45 for 70 minutes falls outside opening hours 12:00-23:00",
	}, {
		about: "starts after closing",
		start: at(23, 30),
		err:   "invalid start: 23:30 for 70 minutes falls outside opening hours 12:00-23:00",
	}, {
		about: "starts before opening",
		start: at(11, 0).AddDate(0, 0, 1),
		err:   "invalid start: 11:00 for 70 minutes falls outside opening hours 12:00-23:00",
	}}
	for _, test := range tests {
		c.Run(test.about, func(c *qt.C) {
			_, err := f.lifecycle.Create(context.Background(), booking.Request{
				BranchID:  f.branch.ID,
				PartySize: 2,
				Start:     test.start,
				Staff:     true,
				Contact:   model.Contact{Name: "Walk-in"},
			})
			var verr *allocation.ValidationError
			c.Assert(err, qt.ErrorAs, &verr)
			c.Assert(verr.Field, qt.Equals, "start")
			c.Assert(err, qt.ErrorMatches, test.err)
		})
	}
}

func TestCreatePastMidnightService(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, 4)
	f.branch.ClosingHour = 2
	f.branch = f.store.AddBranch(f.branch)

	staff := func(start time.Time) booking.Request {
		return booking.Request{
			BranchID:  f.branch.ID,
			PartySize: 2,
			Start:     start,
			Staff:     true,
			Contact:   model.Contact{Name: "Walk-in"},
		}
	}
	res, err := f.lifecycle.Create(context.Background(), staff(at(0, 30).AddDate(0, 0, 1)))
	c.Assert(err, qt.IsNil)
	c.Assert(res.EndUTC, qt.Equals, at(1, 40).AddDate(0, 0, 1).UTC())

	_, err = f.lifecycle.Create(context.Background(), staff(at(1, 0).AddDate(0, 0, 1)))
	var verr *allocation.ValidationError
	c.Assert(err, qt.ErrorAs, &verr)
	c.Assert(verr.Field, qt.Equals, "start")
}
