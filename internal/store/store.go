// Package store declares the persistence contract the reservation engine
// depends on.  The MySQL repository and the in-memory store both implement
// it; the engine never talks to a database directly.
package store

import (
	"context"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Reader holds the queries shared by plain reads and transactions.
type Reader interface {
	// Branch returns the branch with the given id.
	Branch(ctx context.Context, id uint64) (model.Branch, error)
	// TablesByBranch returns every table of a branch ordered by capacity
	// then number, ascending.
	TablesByBranch(ctx context.Context, branchID uint64) ([]model.Table, error)
	// OverlappingReservations returns PEND and CONF reservations on the
	// table whose [start, end) intersects [from, to).
	OverlappingReservations(ctx context.Context, tableID uint64, from, to time.Time) ([]model.Reservation, error)
	// OverlappingBlocks returns blocks on the table, plus branch-wide
	// blocks of the branch, whose [start, end) intersects [from, to).
	OverlappingBlocks(ctx context.Context, branchID, tableID uint64, from, to time.Time) ([]model.ManualBlock, error)
}

// Tx is the transactional view used for check-then-write sequences.  Reads
// made after LockTables see every committed write to those tables, and no
// other transaction can write to them until this one ends.
type Tx interface {
	Reader
	// LockTables takes write locks on the given tables.  Implementations
	// lock in ascending id order.
	LockTables(ctx context.Context, tableIDs ...uint64) error
	Reservation(ctx context.Context, id uint64) (model.Reservation, error)
	// ActiveForCustomer returns the customer's PEND/CONF reservations that
	// start after the given instant.
	ActiveForCustomer(ctx context.Context, customerID uint64, after time.Time) ([]model.Reservation, error)
	// InsertReservation stores res and fills in its ID.
	InsertReservation(ctx context.Context, res *model.Reservation) error
	// UpdateReservation persists table, timing and status changes.
	UpdateReservation(ctx context.Context, res *model.Reservation) error
}

// Store is the full persistence collaborator.
type Store interface {
	Reader
	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Customer(ctx context.Context, id uint64) (model.Customer, error)
	Reservation(ctx context.Context, id uint64) (model.Reservation, error)
	ReservationByFolio(ctx context.Context, folio string) (model.Reservation, error)
	ActiveForCustomer(ctx context.Context, customerID uint64, after time.Time) ([]model.Reservation, error)
	// ReservationsForBranch returns every reservation of the branch that
	// starts in [from, to), ordered by start.
	ReservationsForBranch(ctx context.Context, branchID uint64, from, to time.Time) ([]model.Reservation, error)

	CreateBlock(ctx context.Context, block *model.ManualBlock) error
	DeleteBlock(ctx context.Context, branchID, id uint64) error
	ListBlocks(ctx context.Context, branchID uint64, from, to time.Time) ([]model.ManualBlock, error)

	// ExpireHolds cancels every HOLD created before the cutoff and returns
	// the number of rows changed.
	ExpireHolds(ctx context.Context, createdBefore, now time.Time) (int64, error)
	// ExpirePending cancels every PEND whose start is before the cutoff.
	ExpirePending(ctx context.Context, startedBefore, now time.Time) (int64, error)
}
