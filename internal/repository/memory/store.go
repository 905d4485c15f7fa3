// Package memory is an in-process implementation of store.Store.  It keeps
// everything in maps behind one lock; a transaction holds the write lock
// from start to commit, which serialises writers the way row locks do in
// the MySQL repository.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/store"
)

// Store holds branches, tables, customers, reservations and blocks.
type Store struct {
	mu           sync.RWMutex
	nextID       uint64
	branches     map[uint64]model.Branch
	tables       map[uint64]model.Table
	customers    map[uint64]model.Customer
	reservations map[uint64]model.Reservation
	blocks       map[uint64]model.ManualBlock
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		branches:     make(map[uint64]model.Branch),
		tables:       make(map[uint64]model.Table),
		customers:    make(map[uint64]model.Customer),
		reservations: make(map[uint64]model.Reservation),
		blocks:       make(map[uint64]model.ManualBlock),
	}
}

func (s *Store) id(current uint64) uint64 {
	if current != 0 {
		if current > s.nextID {
			s.nextID = current
		}
		return current
	}
	s.nextID++
	return s.nextID
}

// AddBranch stores b, assigning an ID when it has none.
func (s *Store) AddBranch(b model.Branch) model.Branch {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id(b.ID)
	s.branches[b.ID] = b
	return b
}

// AddTable stores t, assigning an ID when it has none.
func (s *Store) AddTable(t model.Table) model.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id(t.ID)
	s.tables[t.ID] = t
	return t
}

// AddCustomer stores c, assigning an ID when it has none.
func (s *Store) AddCustomer(c model.Customer) model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id(c.ID)
	s.customers[c.ID] = c
	return c
}

// AddReservation stores r as-is, without any checks.  It is meant for
// seeding existing bookings.
func (s *Store) AddReservation(r model.Reservation) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id(r.ID)
	s.reservations[r.ID] = r
	return r
}

// Seed is the JSON layout read by LoadSeed.
type Seed struct {
	Branches  []model.Branch   `json:"branches"`
	Tables    []model.Table    `json:"tables"`
	Customers []model.Customer `json:"customers"`
}

// LoadSeed reads branches, tables and customers from a JSON file.
func (s *Store) LoadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return err
	}
	for _, b := range seed.Branches {
		s.AddBranch(b)
	}
	for _, t := range seed.Tables {
		s.AddTable(t)
	}
	for _, c := range seed.Customers {
		s.AddCustomer(c)
	}
	return nil
}

// Branch implements store.Reader.
func (s *Store) Branch(ctx context.Context, id uint64) (model.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.branch(id)
}

func (s *Store) branch(id uint64) (model.Branch, error) {
	b, ok := s.branches[id]
	if !ok {
		return model.Branch{}, repository.ErrNotFound
	}
	return b, nil
}

// TablesByBranch implements store.Reader.
func (s *Store) TablesByBranch(ctx context.Context, branchID uint64) ([]model.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tablesByBranch(branchID), nil
}

func (s *Store) tablesByBranch(branchID uint64) []model.Table {
	var out []model.Table
	for _, t := range s.tables {
		if t.BranchID == branchID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// OverlappingReservations implements store.Reader.
func (s *Store) OverlappingReservations(ctx context.Context, tableID uint64, from, to time.Time) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return overlapping(s.reservations, nil, tableID, from, to), nil
}

func overlapping(base, staged map[uint64]model.Reservation, tableID uint64, from, to time.Time) []model.Reservation {
	var out []model.Reservation
	for _, r := range merged(base, staged) {
		if r.OnTable(tableID) && r.Status.Active() && r.StartUTC.Before(to) && r.EndUTC.After(from) {
			out = append(out, r)
		}
	}
	sortByStart(out)
	return out
}

// OverlappingBlocks implements store.Reader.
func (s *Store) OverlappingBlocks(ctx context.Context, branchID, tableID uint64, from, to time.Time) ([]model.ManualBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlappingBlocks(branchID, tableID, from, to), nil
}

func (s *Store) overlappingBlocks(branchID, tableID uint64, from, to time.Time) []model.ManualBlock {
	var out []model.ManualBlock
	for _, b := range s.blocks {
		if b.BranchID != branchID {
			continue
		}
		if b.TableID != nil && *b.TableID != tableID {
			continue
		}
		if b.StartUTC.Before(to) && b.EndUTC.After(from) {
			out = append(out, b)
		}
	}
	return out
}

// Customer implements store.Store.
func (s *Store) Customer(ctx context.Context, id uint64) (model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return model.Customer{}, repository.ErrNotFound
	}
	return c, nil
}

// Reservation implements store.Store.
func (s *Store) Reservation(ctx context.Context, id uint64) (model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return r, nil
}

// ReservationByFolio implements store.Store.
func (s *Store) ReservationByFolio(ctx context.Context, folio string) (model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reservations {
		if r.Folio == folio {
			return r, nil
		}
	}
	return model.Reservation{}, repository.ErrNotFound
}

// ActiveForCustomer implements store.Store.
func (s *Store) ActiveForCustomer(ctx context.Context, customerID uint64, after time.Time) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeForCustomer(s.reservations, nil, customerID, after), nil
}

func activeForCustomer(base, staged map[uint64]model.Reservation, customerID uint64, after time.Time) []model.Reservation {
	var out []model.Reservation
	for _, r := range merged(base, staged) {
		if r.CustomerID != nil && *r.CustomerID == customerID && r.Status.Active() && r.StartUTC.After(after) {
			out = append(out, r)
		}
	}
	sortByStart(out)
	return out
}

// ReservationsForBranch implements store.Store.
func (s *Store) ReservationsForBranch(ctx context.Context, branchID uint64, from, to time.Time) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.BranchID == branchID && !r.StartUTC.Before(from) && r.StartUTC.Before(to) {
			out = append(out, r)
		}
	}
	sortByStart(out)
	return out, nil
}

// CreateBlock implements store.Store.
func (s *Store) CreateBlock(ctx context.Context, block *model.ManualBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.branches[block.BranchID]; !ok {
		return repository.ErrNotFound
	}
	if block.TableID != nil {
		t, ok := s.tables[*block.TableID]
		if !ok || t.BranchID != block.BranchID {
			return repository.ErrNotFound
		}
	}
	block.ID = s.id(0)
	s.blocks[block.ID] = *block
	return nil
}

// DeleteBlock implements store.Store.
func (s *Store) DeleteBlock(ctx context.Context, branchID, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok || b.BranchID != branchID {
		return repository.ErrNotFound
	}
	delete(s.blocks, id)
	return nil
}

// ListBlocks implements store.Store.
func (s *Store) ListBlocks(ctx context.Context, branchID uint64, from, to time.Time) ([]model.ManualBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ManualBlock
	for _, b := range s.blocks {
		if b.BranchID == branchID && b.StartUTC.Before(to) && b.EndUTC.After(from) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartUTC.Before(out[j].StartUTC) })
	return out, nil
}

// ExpireHolds implements store.Store.
func (s *Store) ExpireHolds(ctx context.Context, createdBefore, now time.Time) (int64, error) {
	return s.cancelWhere(now, func(r model.Reservation) bool {
		return r.Status == model.StatusHold && r.CreatedAt.Before(createdBefore)
	}), nil
}

// ExpirePending implements store.Store.
func (s *Store) ExpirePending(ctx context.Context, startedBefore, now time.Time) (int64, error) {
	return s.cancelWhere(now, func(r model.Reservation) bool {
		return r.Status == model.StatusPending && r.StartUTC.Before(startedBefore)
	}), nil
}

func (s *Store) cancelWhere(now time.Time, match func(model.Reservation) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.reservations {
		if match(r) {
			r.Status = model.StatusCancelled
			r.UpdatedAt = now
			s.reservations[id] = r
			n++
		}
	}
	return n
}

func merged(base, staged map[uint64]model.Reservation) []model.Reservation {
	out := make([]model.Reservation, 0, len(base)+len(staged))
	for id, r := range base {
		if _, ok := staged[id]; ok {
			continue
		}
		out = append(out, r)
	}
	for _, r := range staged {
		out = append(out, r)
	}
	return out
}

func sortByStart(rs []model.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].StartUTC.Equal(rs[j].StartUTC) {
			return rs[i].StartUTC.Before(rs[j].StartUTC)
		}
		return rs[i].ID < rs[j].ID
	})
}
