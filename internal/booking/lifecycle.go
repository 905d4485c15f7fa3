// Package booking drives the reservation lifecycle: creation with table
// assignment, status transitions, staff reassignment and expiry sweeps.
// Every check-then-write sequence runs inside a store transaction that
// first locks the affected tables.
package booking

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/metrics"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/store"
)

var logger = loggo.GetLogger("tables.booking")

// Notifier is told about confirmed reservations.  Failures are logged and
// never undo the confirmation.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, res model.Reservation, branch model.Branch) error
}

// Request describes a booking attempt.
type Request struct {
	BranchID   uint64
	CustomerID *uint64
	// TableID asks for a specific table; zero lets the allocator choose.
	TableID   uint64
	PartySize int
	Start     time.Time
	// Hold creates the reservation in HOLD instead of PEND.
	Hold bool
	// Staff marks a booking entered by branch staff.  Staff bookings skip
	// the same-day rule and may carry a contact instead of a customer.
	Staff bool
	// Force lets staff seat a party at a protected big table.
	Force   bool
	Contact model.Contact
}

// Lifecycle is the reservation state machine.
type Lifecycle struct {
	store    store.Store
	ops      *allocation.TimeOps
	alloc    *allocation.Allocator
	slots    *allocation.SlotGenerator
	clock    clock.Clock
	notifier Notifier
}

// NewLifecycle wires a lifecycle.  notifier may be nil.
func NewLifecycle(st store.Store, ops *allocation.TimeOps, clk clock.Clock, notifier Notifier) *Lifecycle {
	return &Lifecycle{
		store:    st,
		ops:      ops,
		alloc:    allocation.NewAllocator(ops, clk),
		slots:    allocation.NewSlotGenerator(ops, clk),
		clock:    clk,
		notifier: notifier,
	}
}

// Allocator exposes the table allocator used by the lifecycle.
func (l *Lifecycle) Allocator() *allocation.Allocator { return l.alloc }

// Create books a table for the request.  Input problems yield a
// *allocation.ValidationError, an existing upcoming booking of the same
// customer an *allocation.AlreadyActiveError, and a full branch or busy
// table an *allocation.ConflictError carrying the next free instant.
func (l *Lifecycle) Create(ctx context.Context, req Request) (model.Reservation, error) {
	if req.PartySize <= 0 {
		return model.Reservation{}, allocation.Invalid("party_size", "must be positive, got %d", req.PartySize)
	}
	if req.Start.IsZero() {
		return model.Reservation{}, allocation.Invalid("start", "is required")
	}
	if req.CustomerID == nil && !req.Staff {
		return model.Reservation{}, allocation.Invalid("customer", "is required")
	}
	if req.Force && !req.Staff {
		return model.Reservation{}, allocation.Invalid("force", "is reserved for staff")
	}

	branch, err := l.store.Branch(ctx, req.BranchID)
	if err != nil {
		return model.Reservation{}, errors.Annotatef(err, "branch %d", req.BranchID)
	}
	loc := l.ops.LocationOrFallback(branch)
	now := l.clock.Now()
	local := req.Start.In(loc)

	if req.Start.Before(now) {
		return model.Reservation{}, allocation.Invalid("start", "%s is in the past", local.Format("2006-01-02 15:04"))
	}
	if lead := l.slots.MinimumLead(local); req.Start.Before(now.Add(lead)) {
		return model.Reservation{}, allocation.Invalid("start", "needs at least %d minutes notice", int(lead.Minutes()))
	}
	if l.ops.Policy().SameDayOnly && !req.Staff && !sameLocalDate(local, now.In(loc)) {
		return model.Reservation{}, allocation.Invalid("start", "bookings are only taken for today (%s)", now.In(loc).Format(model.ServiceDateLayout))
	}
	if d := l.ops.BookingDuration(local, req.PartySize); !withinOpeningHours(branch, local, local.Add(d), loc) {
		return model.Reservation{}, allocation.Invalid("start", "%s for %d minutes falls outside opening hours %02d:00-%02d:00",
			local.Format("15:04"), int(d.Minutes()), branch.OpeningHour, branch.ClosingHour)
	}

	tables, err := l.store.TablesByBranch(ctx, branch.ID)
	if err != nil {
		return model.Reservation{}, errors.Annotatef(err, "tables of branch %d", branch.ID)
	}
	if largest := largestCapacity(tables); req.PartySize > largest {
		return model.Reservation{}, allocation.Invalid("party_size", "no table at %s seats %d", branch.Name, req.PartySize)
	}

	contact := req.Contact
	if req.CustomerID != nil {
		customer, err := l.store.Customer(ctx, *req.CustomerID)
		if err != nil {
			return model.Reservation{}, errors.Annotatef(err, "customer %d", *req.CustomerID)
		}
		contact = customer.Snapshot()
		if err := l.checkActive(ctx, l.store, *req.CustomerID, now); err != nil {
			return model.Reservation{}, err
		}
	}

	status := model.StatusPending
	if req.Hold {
		status = model.StatusHold
	}
	res := model.Reservation{
		BranchID:     branch.ID,
		CustomerID:   req.CustomerID,
		PartySize:    req.PartySize,
		StartUTC:     req.Start.UTC(),
		EndUTC:       local.Add(l.ops.BookingDuration(local, req.PartySize)).UTC(),
		TimeZone:     loc.String(),
		Status:       status,
		StaffCreated: req.Staff,
		Contact:      contact,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}

	err = l.store.WithTx(ctx, func(tx store.Tx) error {
		var table *model.Table
		var err error
		if req.TableID != 0 {
			table, err = l.claimTable(ctx, tx, branch, tables, req, res)
		} else {
			table, err = l.assignTable(ctx, tx, branch, tables, req, res)
		}
		if err != nil {
			return err
		}
		// Re-checked under the table locks so two concurrent requests of
		// the same customer cannot both pass.
		if req.CustomerID != nil {
			if err := l.checkActive(ctx, tx, *req.CustomerID, now); err != nil {
				return err
			}
		}
		tableID := table.ID
		res.TableID = &tableID
		return insertWithFolio(ctx, tx, &res, local)
	})
	if err != nil {
		return model.Reservation{}, l.translate(err, req.TableID, res.StartUTC, local)
	}
	metrics.ReservationsCreated.WithLabelValues(string(res.Status)).Inc()
	logger.Infof("reservation %s created: branch %d table %d party %d at %s (%s)",
		res.Folio, res.BranchID, *res.TableID, res.PartySize, local.Format("2006-01-02 15:04"), res.Status)
	return res, nil
}

// claimTable validates and locks the table the request names.
func (l *Lifecycle) claimTable(ctx context.Context, tx store.Tx, branch model.Branch, tables []model.Table, req Request, res model.Reservation) (*model.Table, error) {
	var table *model.Table
	for i := range tables {
		if tables[i].ID == req.TableID {
			table = &tables[i]
			break
		}
	}
	if table == nil {
		return nil, allocation.Invalid("table_id", "table %d is not part of branch %d", req.TableID, branch.ID)
	}
	if table.Blocked {
		return nil, allocation.Invalid("table_id", "table %d is out of service", table.Number)
	}
	if table.Capacity < req.PartySize {
		return nil, allocation.Invalid("party_size", "table %d seats %d, party of %d", table.Number, table.Capacity, req.PartySize)
	}
	loc := l.ops.Zone(res.TimeZone)
	local := res.StartUTC.In(loc)
	if !req.Force && !l.alloc.IsEligible(*table, req.PartySize, res.StartUTC) {
		return nil, l.conflict(table.ID, time.Time{}, local,
			fmt.Sprintf("table %d is kept for larger parties", table.Number))
	}
	if err := tx.LockTables(ctx, table.ID); err != nil {
		return nil, errors.Annotatef(err, "locking table %d", table.ID)
	}
	idx := allocation.NewOverlapIndex(tx)
	busy, err := idx.HasConflict(ctx, *table, res.StartUTC, res.EndUTC, 0)
	if err != nil {
		return nil, err
	}
	if busy {
		next, err := idx.NextAvailableAfterConflict(ctx, *table, res.StartUTC, res.EndUTC, 0)
		if err != nil {
			return nil, err
		}
		return nil, l.conflict(table.ID, next, local,
			fmt.Sprintf("table %d is busy until %s", table.Number, next.In(loc).Format("15:04")))
	}
	return table, nil
}

// assignTable locks every table of the branch and lets the allocator pick
// the least wasteful free one.
func (l *Lifecycle) assignTable(ctx context.Context, tx store.Tx, branch model.Branch, tables []model.Table, req Request, res model.Reservation) (*model.Table, error) {
	ids := make([]uint64, 0, len(tables))
	for _, t := range tables {
		if !t.Blocked && t.Capacity >= req.PartySize {
			ids = append(ids, t.ID)
		}
	}
	if err := tx.LockTables(ctx, ids...); err != nil {
		return nil, errors.Annotatef(err, "locking tables of branch %d", branch.ID)
	}
	local := res.StartUTC.In(l.ops.Zone(res.TimeZone))
	table, err := l.alloc.AutoAssign(ctx, tx, branch, res.StartUTC, req.PartySize)
	if err != nil {
		return nil, err
	}
	if table != nil {
		return table, nil
	}
	next, err := l.alloc.NextAvailable(ctx, tx, branch, res.StartUTC, req.PartySize)
	if err != nil {
		return nil, err
	}
	return nil, l.conflict(0, next, local, "")
}

// withinOpeningHours reports whether [start, end) lies inside one service
// day of the branch.  A start after midnight may belong to the previous
// day's service when the branch closes past midnight.
func withinOpeningHours(b model.Branch, start, end time.Time, loc *time.Location) bool {
	for _, day := range []time.Time{start, start.AddDate(0, 0, -1)} {
		open, closing := allocation.DayBounds(b, day, loc)
		if !start.Before(open) && !end.After(closing) {
			return true
		}
	}
	return false
}

func (l *Lifecycle) checkActive(ctx context.Context, r interface {
	ActiveForCustomer(ctx context.Context, customerID uint64, after time.Time) ([]model.Reservation, error)
}, customerID uint64, now time.Time) error {
	active, err := r.ActiveForCustomer(ctx, customerID, now)
	if err != nil {
		return errors.Annotatef(err, "active reservations of customer %d", customerID)
	}
	if len(active) > 0 {
		return &allocation.AlreadyActiveError{Folio: active[0].Folio, StartUTC: active[0].StartUTC}
	}
	return nil
}

// conflict builds the guest-facing conflict for a request at local.  An
// empty reason is replaced by the standard message with the next opening
// and the hold duration.
func (l *Lifecycle) conflict(tableID uint64, next, local time.Time, reason string) *allocation.ConflictError {
	hold := l.ops.HoldMinutes(local)
	if reason == "" {
		reason = fmt.Sprintf("no table available at %s", local.Format("15:04"))
		if !next.IsZero() {
			reason += fmt.Sprintf("; next opening at %s", next.In(local.Location()).Format("15:04"))
		}
	}
	reason += fmt.Sprintf(" (tables are held for %d minutes)", hold)
	metrics.Conflicts.Inc()
	return &allocation.ConflictError{TableID: tableID, NextAvailable: next, HoldMinutes: hold, Reason: reason}
}

// translate turns storage backstop failures into conflicts.
func (l *Lifecycle) translate(err error, tableID uint64, start, local time.Time) error {
	if isStorageConflict(err) {
		logger.Debugf("storage rejected booking at %s: %v", start.Format(time.RFC3339), err)
		return l.conflict(tableID, time.Time{}, local, fmt.Sprintf("the %s slot was just taken", local.Format("15:04")))
	}
	return err
}

// isStorageConflict reports whether err is the storage backstop or lock
// contention rejecting a write.
func isStorageConflict(err error) bool {
	return stderrors.Is(err, repository.ErrSlotTaken) || stderrors.Is(err, repository.ErrConflict)
}

// Get returns a reservation by id.
func (l *Lifecycle) Get(ctx context.Context, id uint64) (model.Reservation, error) {
	return l.store.Reservation(ctx, id)
}

// GetByFolio returns a reservation by booking code.
func (l *Lifecycle) GetByFolio(ctx context.Context, folio string) (model.Reservation, error) {
	return l.store.ReservationByFolio(ctx, folio)
}

// Confirm moves a HOLD or PEND reservation to CONF.  A HOLD does not keep
// its table, so its slot is re-checked first; if another booking took it
// meanwhile, the hold is cancelled and a conflict returned.
func (l *Lifecycle) Confirm(ctx context.Context, id uint64) (model.Reservation, error) {
	var out model.Reservation
	var lost *allocation.ConflictError
	err := l.store.WithTx(ctx, func(tx store.Tx) error {
		res, err := tx.Reservation(ctx, id)
		if err != nil {
			return err
		}
		if err := l.checkTransition(res, model.StatusConfirmed); err != nil {
			return err
		}
		if res.Status == model.StatusHold && res.TableID != nil {
			if err := tx.LockTables(ctx, *res.TableID); err != nil {
				return errors.Annotatef(err, "locking table %d", *res.TableID)
			}
			table := model.Table{ID: *res.TableID, BranchID: res.BranchID}
			idx := allocation.NewOverlapIndex(tx)
			busy, err := idx.Conflicts(ctx, table, res.StartUTC, res.EndUTC, res.ID)
			if err != nil {
				return err
			}
			if len(busy) > 0 {
				next, err := idx.NextAvailableAfterConflict(ctx, table, res.StartUTC, res.EndUTC, res.ID)
				if err != nil {
					return err
				}
				loc := l.ops.Zone(res.TimeZone)
				lost = l.conflict(table.ID, next, res.LocalStart(loc),
					fmt.Sprintf("hold %s lost its table; next opening at %s", res.Folio, next.In(loc).Format("15:04")))
				res.Status = model.StatusCancelled
				res.UpdatedAt = l.clock.Now().UTC()
				out = res
				return tx.UpdateReservation(ctx, &res)
			}
		}
		res.Status = model.StatusConfirmed
		res.UpdatedAt = l.clock.Now().UTC()
		out = res
		return tx.UpdateReservation(ctx, &res)
	})
	if err != nil {
		return model.Reservation{}, l.translate(err, 0, out.StartUTC, out.LocalStart(l.ops.Zone(out.TimeZone)))
	}
	if lost != nil {
		metrics.Transitions.WithLabelValues(string(model.StatusCancelled)).Inc()
		logger.Infof("hold %s cancelled: table taken before confirmation", out.Folio)
		return out, lost
	}
	metrics.Transitions.WithLabelValues(string(model.StatusConfirmed)).Inc()
	logger.Infof("reservation %s confirmed", out.Folio)
	l.notifyConfirmed(ctx, out)
	return out, nil
}

func (l *Lifecycle) notifyConfirmed(ctx context.Context, res model.Reservation) {
	if l.notifier == nil {
		return
	}
	branch, err := l.store.Branch(ctx, res.BranchID)
	if err != nil {
		logger.Warningf("notify %s: loading branch %d: %v", res.Folio, res.BranchID, err)
		return
	}
	if err := l.notifier.ReservationConfirmed(ctx, res, branch); err != nil {
		logger.Warningf("notify %s: %v", res.Folio, err)
	}
}

// Cancel moves a HOLD, PEND or CONF reservation to CANC.
func (l *Lifecycle) Cancel(ctx context.Context, id uint64) (model.Reservation, error) {
	return l.transition(ctx, id, model.StatusCancelled, nil)
}

// MarkNoShow moves a CONF reservation to NOSH once the guest's grace
// period after the start has run out.
func (l *Lifecycle) MarkNoShow(ctx context.Context, id uint64) (model.Reservation, error) {
	tolerance := l.ops.Policy().PendingTolerance
	return l.transition(ctx, id, model.StatusNoShow, func(res model.Reservation) error {
		due := res.StartUTC.Add(tolerance)
		if l.clock.Now().Before(due) {
			return allocation.Invalid("status", "reservation %s can be marked no-show from %s",
				res.Folio, due.In(l.ops.Zone(res.TimeZone)).Format("15:04"))
		}
		return nil
	})
}

func (l *Lifecycle) transition(ctx context.Context, id uint64, to model.Status, check func(model.Reservation) error) (model.Reservation, error) {
	var out model.Reservation
	err := l.store.WithTx(ctx, func(tx store.Tx) error {
		res, err := tx.Reservation(ctx, id)
		if err != nil {
			return err
		}
		if err := l.checkTransition(res, to); err != nil {
			return err
		}
		if check != nil {
			if err := check(res); err != nil {
				return err
			}
		}
		res.Status = to
		res.UpdatedAt = l.clock.Now().UTC()
		out = res
		return tx.UpdateReservation(ctx, &res)
	})
	if err != nil {
		return model.Reservation{}, err
	}
	metrics.Transitions.WithLabelValues(string(to)).Inc()
	logger.Infof("reservation %s -> %s", out.Folio, to)
	return out, nil
}

func (l *Lifecycle) checkTransition(res model.Reservation, to model.Status) error {
	if res.Status.CanTransition(to) {
		return nil
	}
	err := &allocation.InvalidTransitionError{Folio: res.Folio, From: res.Status, To: to}
	logger.Errorf("%v", err)
	return err
}

// ExpireStaleHolds cancels every HOLD created more than threshold ago.
func (l *Lifecycle) ExpireStaleHolds(ctx context.Context, threshold time.Duration) (int64, error) {
	now := l.clock.Now()
	n, err := l.store.ExpireHolds(ctx, now.Add(-threshold), now)
	if err != nil {
		return 0, errors.Annotate(err, "expiring stale holds")
	}
	metrics.Expired.WithLabelValues("hold").Add(float64(n))
	return n, nil
}

// ExpireOverdueConfirmed cancels every PEND reservation whose start plus
// tolerance has passed, so unconfirmed no-shows stop blocking their table.
func (l *Lifecycle) ExpireOverdueConfirmed(ctx context.Context, tolerance time.Duration) (int64, error) {
	now := l.clock.Now()
	n, err := l.store.ExpirePending(ctx, now.Add(-tolerance), now)
	if err != nil {
		return 0, errors.Annotate(err, "expiring overdue pending reservations")
	}
	metrics.Expired.WithLabelValues("pending").Add(float64(n))
	return n, nil
}

// MoveResult is the outcome of a staff reassignment.
type MoveResult struct {
	Moved       bool              `json:"moved"`
	Reason      string            `json:"reason,omitempty"`
	Reservation model.Reservation `json:"reservation"`
}

// Move reassigns reservation id to tableID.  Ineligible or busy targets
// come back as Moved=false with a reason, not as an error.  A target taken
// by a concurrent writer and caught by the storage backstop is reported
// the same way.
func (l *Lifecycle) Move(ctx context.Context, id, tableID uint64, force bool) (MoveResult, error) {
	var out MoveResult
	var current model.Reservation
	var targetNumber int
	err := l.store.WithTx(ctx, func(tx store.Tx) error {
		res, err := tx.Reservation(ctx, id)
		if err != nil {
			return err
		}
		current = res
		// The target row lock comes before any other read, so every read
		// below sees what concurrent writers committed on that table.
		if err := tx.LockTables(ctx, tableID); err != nil {
			if stderrors.Is(err, repository.ErrNotFound) {
				return allocation.Invalid("table_id", "table %d is not part of branch %d", tableID, res.BranchID)
			}
			return errors.Annotatef(err, "locking table %d", tableID)
		}
		tables, err := tx.TablesByBranch(ctx, res.BranchID)
		if err != nil {
			return errors.Annotatef(err, "tables of branch %d", res.BranchID)
		}
		var target *model.Table
		for i := range tables {
			if tables[i].ID == tableID {
				target = &tables[i]
				break
			}
		}
		if target == nil {
			return allocation.Invalid("table_id", "table %d is not part of branch %d", tableID, res.BranchID)
		}
		targetNumber = target.Number
		moved, reason, err := l.alloc.Move(ctx, tx, &res, *target, force)
		if err != nil {
			return err
		}
		out = MoveResult{Moved: moved, Reason: reason, Reservation: res}
		return nil
	})
	if isStorageConflict(err) && current.ID != 0 {
		local := current.LocalStart(l.ops.Zone(current.TimeZone))
		what := "the table"
		if targetNumber != 0 {
			what = fmt.Sprintf("table %d", targetNumber)
		}
		logger.Infof("move of %s to %s rejected by storage: %v", current.Folio, what, err)
		return MoveResult{
			Reason:      fmt.Sprintf("%s was just taken at %s", what, local.Format("15:04")),
			Reservation: current,
		}, nil
	}
	if err != nil {
		return MoveResult{}, err
	}
	return out, nil
}

// Candidates lists the tables reservation id could move to.
func (l *Lifecycle) Candidates(ctx context.Context, id uint64, force bool) ([]allocation.Candidate, error) {
	res, err := l.store.Reservation(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.alloc.CandidatesFor(ctx, l.store, res, force)
}

// TableSlots holds the free start times of one table.
type TableSlots struct {
	Table model.Table `json:"table"`
	Slots []time.Time `json:"slots"`
}

// Availability sweeps expired bookings and then lists the free start
// times on the branch-local date for every table that can seat the party.
// A non-zero tableID restricts the listing to that table.
func (l *Lifecycle) Availability(ctx context.Context, branchID, tableID uint64, date time.Time, partySize int) ([]TableSlots, error) {
	if partySize <= 0 {
		return nil, allocation.Invalid("party_size", "must be positive, got %d", partySize)
	}
	if _, err := l.Sweep(ctx); err != nil {
		logger.Warningf("sweep before availability read: %v", err)
	}
	branch, err := l.store.Branch(ctx, branchID)
	if err != nil {
		return nil, errors.Annotatef(err, "branch %d", branchID)
	}
	tables, err := l.store.TablesByBranch(ctx, branch.ID)
	if err != nil {
		return nil, errors.Annotatef(err, "tables of branch %d", branch.ID)
	}
	var out []TableSlots
	for _, t := range tables {
		if tableID != 0 && t.ID != tableID {
			continue
		}
		if t.Blocked || t.Capacity < partySize {
			continue
		}
		slots, err := l.slots.CollectSlots(ctx, l.store, branch, t, date, partySize)
		if err != nil {
			return nil, errors.Annotatef(err, "slots of table %d", t.ID)
		}
		out = append(out, TableSlots{Table: t, Slots: slots})
	}
	if tableID != 0 && out == nil {
		found := false
		for _, t := range tables {
			found = found || t.ID == tableID
		}
		if !found {
			return nil, allocation.Invalid("table_id", "table %d is not part of branch %d", tableID, branch.ID)
		}
	}
	return out, nil
}

// DaySheet returns every reservation of the branch starting on the local
// service date of day.
func (l *Lifecycle) DaySheet(ctx context.Context, branchID uint64, day time.Time) ([]model.Reservation, error) {
	branch, err := l.store.Branch(ctx, branchID)
	if err != nil {
		return nil, errors.Annotatef(err, "branch %d", branchID)
	}
	from, to := localDay(day, l.ops.LocationOrFallback(branch))
	return l.store.ReservationsForBranch(ctx, branch.ID, from, to)
}

// CreateBlock records a staff unavailability window.
func (l *Lifecycle) CreateBlock(ctx context.Context, block model.ManualBlock) (model.ManualBlock, error) {
	if block.StartUTC.IsZero() || block.EndUTC.IsZero() {
		return model.ManualBlock{}, allocation.Invalid("window", "start and end are required")
	}
	if !block.EndUTC.After(block.StartUTC) {
		return model.ManualBlock{}, allocation.Invalid("window", "end must be after start")
	}
	if _, err := l.store.Branch(ctx, block.BranchID); err != nil {
		return model.ManualBlock{}, errors.Annotatef(err, "branch %d", block.BranchID)
	}
	block.StartUTC = block.StartUTC.UTC()
	block.EndUTC = block.EndUTC.UTC()
	block.CreatedAt = l.clock.Now().UTC()
	if err := l.store.CreateBlock(ctx, &block); err != nil {
		return model.ManualBlock{}, err
	}
	logger.Infof("block %d created on branch %d", block.ID, block.BranchID)
	return block, nil
}

// DeleteBlock removes a block of the branch.
func (l *Lifecycle) DeleteBlock(ctx context.Context, branchID, id uint64) error {
	return l.store.DeleteBlock(ctx, branchID, id)
}

// Blocks lists the blocks of the branch touching the local date of day.
func (l *Lifecycle) Blocks(ctx context.Context, branchID uint64, day time.Time) ([]model.ManualBlock, error) {
	branch, err := l.store.Branch(ctx, branchID)
	if err != nil {
		return nil, errors.Annotatef(err, "branch %d", branchID)
	}
	from, to := localDay(day, l.ops.LocationOrFallback(branch))
	return l.store.ListBlocks(ctx, branch.ID, from, to)
}

// localDay returns the UTC bounds of the calendar date of day in loc.
func localDay(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start.UTC(), time.Date(y, m, d+1, 0, 0, 0, 0, loc).UTC()
}

func sameLocalDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func largestCapacity(tables []model.Table) int {
	largest := 0
	for _, t := range tables {
		if !t.Blocked && t.Capacity > largest {
			largest = t.Capacity
		}
	}
	return largest
}
