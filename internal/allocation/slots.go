package allocation

import (
	"context"
	"iter"
	"time"

	"github.com/juju/clock"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/store"
)

// SlotGenerator lists the start times still bookable on a table for one
// local service day.  Results depend on the bookings present when the
// sequence is walked, so callers regenerate them per request.
type SlotGenerator struct {
	ops   *TimeOps
	clock clock.Clock
}

// NewSlotGenerator returns a generator using ops for local-time rules and
// clk as the source of "now".
func NewSlotGenerator(ops *TimeOps, clk clock.Clock) *SlotGenerator {
	return &SlotGenerator{ops: ops, clock: clk}
}

// MinimumLead returns the notice a booking at local needs: the peak lead
// inside peak windows, the base lead otherwise.
func (g *SlotGenerator) MinimumLead(local time.Time) time.Duration {
	p := g.ops.policy
	if g.ops.inPeakWindow(local) && p.PeakLead > p.BaseLead {
		return p.PeakLead
	}
	return p.BaseLead
}

// DayBounds returns the opening and closing instants of the branch on the
// calendar date of day, in loc.  A closing hour at or before the opening
// hour closes on the following date.
func DayBounds(b model.Branch, day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.In(loc).Date()
	open := time.Date(y, m, d, b.OpeningHour, 0, 0, 0, loc)
	closeDay := d
	if b.ClosingHour <= b.OpeningHour {
		closeDay++
	}
	return open, time.Date(y, m, closeDay, b.ClosingHour, 0, 0, 0, loc)
}

// Slots yields, in ascending order, the local start times on date at which
// table can seat partySize guests without conflict.  date is read as a
// calendar date in the branch zone.  The sequence may be walked any number
// of times; each walk queries r afresh.  A read failure is yielded once
// and ends the walk.
func (g *SlotGenerator) Slots(ctx context.Context, r store.Reader, branch model.Branch, table model.Table, date time.Time, partySize int) iter.Seq2[time.Time, error] {
	return func(yield func(time.Time, error) bool) {
		if table.Blocked || partySize <= 0 || table.Capacity < partySize {
			return
		}
		loc := g.ops.LocationOrFallback(branch)
		y, m, d := date.Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, loc)
		dayStart, dayEnd := DayBounds(branch, date, loc)

		latest := dayEnd.Add(-g.ops.BookingDuration(dayStart, partySize))
		if dayStart.After(latest) {
			return
		}

		now := g.clock.Now().In(loc)
		if date.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)) {
			return
		}
		lower := dayStart
		if sameDate(now, date) {
			buffer := g.ops.policy.SlotBuffer
			if lead := g.MinimumLead(now); lead > buffer {
				buffer = lead
			}
			if floor := CeilToStep(now.Add(buffer), g.ops.policy.SlotStep); floor.After(lower) {
				lower = floor
			}
		}

		idx := NewOverlapIndex(r)
		for start := lower; !start.After(latest); start = start.Add(g.ops.policy.SlotStep) {
			end := start.Add(g.ops.BookingDuration(start, partySize))
			if end.After(dayEnd) {
				continue
			}
			busy, err := idx.HasConflict(ctx, table, start.UTC(), end.UTC(), 0)
			if err != nil {
				yield(time.Time{}, err)
				return
			}
			if busy {
				continue
			}
			if !yield(start, nil) {
				return
			}
		}
	}
}

// CollectSlots walks Slots into a slice.
func (g *SlotGenerator) CollectSlots(ctx context.Context, r store.Reader, branch model.Branch, table model.Table, date time.Time, partySize int) ([]time.Time, error) {
	var out []time.Time
	for start, err := range g.Slots(ctx, r, branch, table, date, partySize) {
		if err != nil {
			return nil, err
		}
		out = append(out, start)
	}
	return out, nil
}
