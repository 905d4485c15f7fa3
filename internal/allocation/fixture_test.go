package allocation_test

import (
	"fmt"
	"time"
	_ "time/tzdata"

	qt "github.com/frankban/quicktest"
	"github.com/juju/clock/testclock"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/model"
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

type fixture struct {
	store  *memory.Store
	branch model.Branch
	tables []model.Table
	clock  *testclock.Clock
	ops    *allocation.TimeOps
	folios int
}

// newFixture builds a branch open 12:00-23:00 with one table per capacity,
// numbered from 1 in the given order.
func newFixture(c *qt.C, now time.Time, capacities ...int) *fixture {
	st := memory.New()
	f := &fixture{
		store: st,
		branch: st.AddBranch(model.Branch{
			Name:        "Centro",
			TimeZone:    zone,
			OpeningHour: 12,
			ClosingHour: 23,
		}),
		clock: testclock.NewClock(now),
		ops:   allocation.NewTimeOps(allocation.DefaultPolicy()),
	}
	for i, capacity := range capacities {
		f.tables = append(f.tables, st.AddTable(model.Table{
			BranchID: f.branch.ID,
			Number:   i + 1,
			Capacity: capacity,
		}))
	}
	return f
}

// book seeds an existing reservation on table.
func (f *fixture) book(table model.Table, start time.Time, d time.Duration, status model.Status) model.Reservation {
	f.folios++
	tableID := table.ID
	return f.store.AddReservation(model.Reservation{
		Folio:     fmt.Sprintf("SEED-%d", f.folios),
		BranchID:  f.branch.ID,
		TableID:   &tableID,
		PartySize: 2,
		StartUTC:  start.UTC(),
		EndUTC:    start.Add(d).UTC(),
		TimeZone:  zone,
		Status:    status,
	})
}
