package memory

import (
	"context"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/store"
)

// WithTx implements store.Store.  Writes are staged and only applied when
// fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memTx{s: s, staged: make(map[uint64]model.Reservation)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for id, r := range tx.staged {
		s.reservations[id] = r
	}
	return nil
}

// memTx runs with the store's write lock held, so it reads the maps
// directly.
type memTx struct {
	s      *Store
	staged map[uint64]model.Reservation
}

func (t *memTx) Branch(ctx context.Context, id uint64) (model.Branch, error) {
	return t.s.branch(id)
}

func (t *memTx) TablesByBranch(ctx context.Context, branchID uint64) ([]model.Table, error) {
	return t.s.tablesByBranch(branchID), nil
}

func (t *memTx) OverlappingReservations(ctx context.Context, tableID uint64, from, to time.Time) ([]model.Reservation, error) {
	return overlapping(t.s.reservations, t.staged, tableID, from, to), nil
}

func (t *memTx) OverlappingBlocks(ctx context.Context, branchID, tableID uint64, from, to time.Time) ([]model.ManualBlock, error) {
	return t.s.overlappingBlocks(branchID, tableID, from, to), nil
}

// LockTables only checks that the tables exist; the transaction already
// holds the store lock.
func (t *memTx) LockTables(ctx context.Context, tableIDs ...uint64) error {
	for _, id := range tableIDs {
		if _, ok := t.s.tables[id]; !ok {
			return repository.ErrNotFound
		}
	}
	return nil
}

func (t *memTx) Reservation(ctx context.Context, id uint64) (model.Reservation, error) {
	if r, ok := t.staged[id]; ok {
		return r, nil
	}
	r, ok := t.s.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return r, nil
}

func (t *memTx) ActiveForCustomer(ctx context.Context, customerID uint64, after time.Time) ([]model.Reservation, error) {
	return activeForCustomer(t.s.reservations, t.staged, customerID, after), nil
}

func (t *memTx) InsertReservation(ctx context.Context, res *model.Reservation) error {
	if err := t.checkUnique(*res); err != nil {
		return err
	}
	res.ID = t.s.id(0)
	t.staged[res.ID] = *res
	return nil
}

func (t *memTx) UpdateReservation(ctx context.Context, res *model.Reservation) error {
	if _, err := t.Reservation(ctx, res.ID); err != nil {
		return err
	}
	if err := t.checkUnique(*res); err != nil {
		return err
	}
	t.staged[res.ID] = *res
	return nil
}

// checkUnique mirrors the unique keys of the reservations table: the folio,
// and the start of an active reservation per table.
func (t *memTx) checkUnique(res model.Reservation) error {
	for _, other := range merged(t.s.reservations, t.staged) {
		if other.ID == res.ID {
			continue
		}
		if other.Folio != "" && other.Folio == res.Folio {
			return repository.ErrDuplicateFolio
		}
		if res.TableID != nil && res.Status.Active() && other.Status.Active() &&
			other.OnTable(*res.TableID) && other.StartUTC.Equal(res.StartUTC) {
			return repository.ErrSlotTaken
		}
	}
	return nil
}
