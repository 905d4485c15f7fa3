package allocation

import (
	"context"
	"time"

	"github.com/juju/errors"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/store"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Intervals that only touch (one ends where the other starts) do not.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// OverlapIndex answers whether a candidate window on a table collides with
// an active reservation or a manual block.  It is the only place the
// engine decides about conflicts.
type OverlapIndex struct {
	r store.Reader
}

// NewOverlapIndex builds an index reading through r.  Pass a store.Tx to
// get answers that hold until the transaction ends.
func NewOverlapIndex(r store.Reader) *OverlapIndex { return &OverlapIndex{r: r} }

// Conflicts returns every busy interval on table intersecting
// [start, end).  The reservation excludeID (zero for none) is ignored so a
// booking never conflicts with itself.
func (x *OverlapIndex) Conflicts(ctx context.Context, table model.Table, start, end time.Time, excludeID uint64) ([]Interval, error) {
	reservations, err := x.r.OverlappingReservations(ctx, table.ID, start, end)
	if err != nil {
		return nil, errors.Annotatef(err, "reservations on table %d", table.ID)
	}
	blocks, err := x.r.OverlappingBlocks(ctx, table.BranchID, table.ID, start, end)
	if err != nil {
		return nil, errors.Annotatef(err, "blocks on table %d", table.ID)
	}
	var busy []Interval
	for _, res := range reservations {
		if excludeID != 0 && res.ID == excludeID {
			continue
		}
		if !res.Status.Active() {
			continue
		}
		if Overlaps(res.StartUTC, res.EndUTC, start, end) {
			busy = append(busy, Interval{Start: res.StartUTC, End: res.EndUTC})
		}
	}
	for _, b := range blocks {
		if b.TableID != nil && *b.TableID != table.ID {
			continue
		}
		if Overlaps(b.StartUTC, b.EndUTC, start, end) {
			busy = append(busy, Interval{Start: b.StartUTC, End: b.EndUTC})
		}
	}
	return busy, nil
}

// HasConflict reports whether anything occupies table during [start, end).
func (x *OverlapIndex) HasConflict(ctx context.Context, table model.Table, start, end time.Time, excludeID uint64) (bool, error) {
	busy, err := x.Conflicts(ctx, table, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(busy) > 0, nil
}

// NextAvailableAfterConflict returns the latest end among the intervals
// conflicting with [start, end), so stacked bookings report the time the
// table is really free again.  Without conflicts it returns start.
func (x *OverlapIndex) NextAvailableAfterConflict(ctx context.Context, table model.Table, start, end time.Time, excludeID uint64) (time.Time, error) {
	busy, err := x.Conflicts(ctx, table, start, end, excludeID)
	if err != nil {
		return time.Time{}, err
	}
	return latestEnd(start, busy), nil
}

func latestEnd(start time.Time, busy []Interval) time.Time {
	next := start
	for _, iv := range busy {
		if iv.End.After(next) {
			next = iv.End
		}
	}
	return next
}
