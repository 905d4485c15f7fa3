package allocation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/store"
)

// Allocator picks tables for parties and validates table changes.
type Allocator struct {
	ops   *TimeOps
	clock clock.Clock
}

// NewAllocator returns an allocator using ops for duration rules and clk
// as the source of "now".
func NewAllocator(ops *TimeOps, clk clock.Clock) *Allocator {
	return &Allocator{ops: ops, clock: clk}
}

// Candidate is a table that can take a reservation, with the seats it
// would leave empty.
type Candidate struct {
	Table model.Table `json:"table"`
	Waste int         `json:"waste"`
}

// protected reports whether big tables are still kept for large parties
// for a slot starting at start.
func (a *Allocator) protected(start time.Time) bool {
	return start.Sub(a.clock.Now()) > a.ops.policy.ProtectionRelease
}

// IsEligible reports whether table may seat partySize guests at start.
// Capacity always has to suffice.  Tables at or above the big-table
// capacity additionally refuse parties that would waste more than
// WasteMax seats, until the protection lifts shortly before the slot.
//
// There is no fixed "90 minutes ahead" cut-off.  Protection lasts while
// the slot is more than Policy.ProtectionRelease away, and the default
// release of zero keeps big tables protected until the slot starts, so a
// slot 60 or 120 minutes out is protected and one starting now is not.
// See the protection window decision in DESIGN.md.
func (a *Allocator) IsEligible(table model.Table, partySize int, start time.Time) bool {
	if table.Blocked || partySize <= 0 || table.Capacity < partySize {
		return false
	}
	p := a.ops.policy
	if table.Capacity < p.BigTableCapacity {
		return true
	}
	if a.protected(start) {
		return table.Waste(partySize) <= p.WasteMax
	}
	return true
}

// window returns the UTC booking window for a party starting at start.
func (a *Allocator) window(branch model.Branch, start time.Time, partySize int) (time.Time, time.Time) {
	local := start.In(a.ops.LocationOrFallback(branch))
	return start.UTC(), local.Add(a.ops.BookingDuration(local, partySize)).UTC()
}

// AutoAssign returns the smallest eligible free table for the party,
// walking tables by capacity then number.  It returns nil when every
// table is taken.
func (a *Allocator) AutoAssign(ctx context.Context, r store.Reader, branch model.Branch, start time.Time, partySize int) (*model.Table, error) {
	tables, err := r.TablesByBranch(ctx, branch.ID)
	if err != nil {
		return nil, errors.Annotatef(err, "tables of branch %d", branch.ID)
	}
	sortTables(tables)
	from, to := a.window(branch, start, partySize)
	idx := NewOverlapIndex(r)
	for _, t := range tables {
		if t.Capacity < partySize || !a.IsEligible(t, partySize, start) {
			continue
		}
		busy, err := idx.HasConflict(ctx, t, from, to, 0)
		if err != nil {
			return nil, err
		}
		if !busy {
			table := t
			return &table, nil
		}
	}
	return nil, nil
}

// NextAvailable returns the earliest instant at which any table big
// enough for the party frees up after the requested window, zero when the
// branch has no such table.
func (a *Allocator) NextAvailable(ctx context.Context, r store.Reader, branch model.Branch, start time.Time, partySize int) (time.Time, error) {
	tables, err := r.TablesByBranch(ctx, branch.ID)
	if err != nil {
		return time.Time{}, errors.Annotatef(err, "tables of branch %d", branch.ID)
	}
	from, to := a.window(branch, start, partySize)
	idx := NewOverlapIndex(r)
	var best time.Time
	for _, t := range tables {
		if t.Blocked || t.Capacity < partySize {
			continue
		}
		next, err := idx.NextAvailableAfterConflict(ctx, t, from, to, 0)
		if err != nil {
			return time.Time{}, err
		}
		if best.IsZero() || next.Before(best) {
			best = next
		}
	}
	return best, nil
}

// CandidatesFor lists the tables res could move to, least waste first and
// smaller tables first on ties.  With force, big-table protection is
// ignored; capacity and conflicts never are.
func (a *Allocator) CandidatesFor(ctx context.Context, r store.Reader, res model.Reservation, force bool) ([]Candidate, error) {
	tables, err := r.TablesByBranch(ctx, res.BranchID)
	if err != nil {
		return nil, errors.Annotatef(err, "tables of branch %d", res.BranchID)
	}
	idx := NewOverlapIndex(r)
	var out []Candidate
	for _, t := range tables {
		if res.OnTable(t.ID) || t.Blocked || t.Capacity < res.PartySize {
			continue
		}
		if !force && !a.IsEligible(t, res.PartySize, res.StartUTC) {
			continue
		}
		busy, err := idx.HasConflict(ctx, t, res.StartUTC, res.EndUTC, res.ID)
		if err != nil {
			return nil, err
		}
		if busy {
			continue
		}
		out = append(out, Candidate{Table: t, Waste: t.Waste(res.PartySize)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Waste != out[j].Waste {
			return out[i].Waste < out[j].Waste
		}
		if out[i].Table.Capacity != out[j].Table.Capacity {
			return out[i].Table.Capacity < out[j].Table.Capacity
		}
		return out[i].Table.Number < out[j].Table.Number
	})
	return out, nil
}

// Move reassigns res to target inside tx.  Ineligible or busy targets are
// ordinary outcomes: Move then returns false and a reason for staff, and
// leaves res untouched.  The conflict check runs after target is locked,
// so it holds at commit.
func (a *Allocator) Move(ctx context.Context, tx store.Tx, res *model.Reservation, target model.Table, force bool) (bool, string, error) {
	switch {
	case res.Status.Terminal():
		return false, fmt.Sprintf("reservation %s is %s", res.Folio, res.Status), nil
	case target.BranchID != res.BranchID:
		return false, fmt.Sprintf("table %d belongs to another branch", target.Number), nil
	case res.OnTable(target.ID):
		return false, fmt.Sprintf("reservation %s is already at table %d", res.Folio, target.Number), nil
	case target.Blocked:
		return false, fmt.Sprintf("table %d is out of service", target.Number), nil
	case target.Capacity < res.PartySize:
		return false, fmt.Sprintf("table %d seats %d, party of %d", target.Number, target.Capacity, res.PartySize), nil
	case !force && !a.IsEligible(target, res.PartySize, res.StartUTC):
		return false, fmt.Sprintf("table %d is kept for larger parties", target.Number), nil
	}

	if err := tx.LockTables(ctx, target.ID); err != nil {
		return false, "", errors.Annotatef(err, "locking table %d", target.ID)
	}
	busy, err := NewOverlapIndex(tx).Conflicts(ctx, target, res.StartUTC, res.EndUTC, res.ID)
	if err != nil {
		return false, "", err
	}
	if len(busy) > 0 {
		free := latestEnd(res.StartUTC, busy)
		return false, fmt.Sprintf("table %d is busy until %s", target.Number, free.In(a.ops.Zone(res.TimeZone)).Format("15:04")), nil
	}

	tableID := target.ID
	res.TableID = &tableID
	res.UpdatedAt = a.clock.Now().UTC()
	if err := tx.UpdateReservation(ctx, res); err != nil {
		return false, "", errors.Annotatef(err, "moving %s to table %d", res.Folio, target.Number)
	}
	logger.Infof("reservation %s moved to table %d (force=%v)", res.Folio, target.Number, force)
	return true, "", nil
}

func sortTables(tables []model.Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].Capacity != tables[j].Capacity {
			return tables[i].Capacity < tables[j].Capacity
		}
		return tables[i].Number < tables[j].Number
	})
}
