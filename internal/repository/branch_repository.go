package repository

import (
	"context"
	"sort"

	"github.com/iliyamo/table-reservation/internal/model"
)

const branchColumns = `id, country_id, name, address, time_zone, opening_hour, closing_hour, created_at, updated_at`

func getBranch(ctx context.Context, q querier, id uint64) (model.Branch, error) {
	var b model.Branch
	err := q.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE id = ? LIMIT 1`, id,
	).Scan(&b.ID, &b.CountryID, &b.Name, &b.Address, &b.TimeZone, &b.OpeningHour, &b.ClosingHour, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Branch{}, classify(err)
	}
	return b, nil
}

// tablesByBranch returns the tables of a branch ordered by capacity then
// number, the order table assignment walks them in.
func tablesByBranch(ctx context.Context, q querier, branchID uint64) ([]model.Table, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, branch_id, number, capacity, blocked
		 FROM dining_tables
		 WHERE branch_id = ?
		 ORDER BY capacity, number`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.BranchID, &t.Number, &t.Capacity, &t.Blocked); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Branch implements store.Reader.
func (s *Store) Branch(ctx context.Context, id uint64) (model.Branch, error) {
	return getBranch(ctx, s.db, id)
}

// TablesByBranch implements store.Reader.
func (s *Store) TablesByBranch(ctx context.Context, branchID uint64) ([]model.Table, error) {
	return tablesByBranch(ctx, s.db, branchID)
}

func (t *txStore) Branch(ctx context.Context, id uint64) (model.Branch, error) {
	return getBranch(ctx, t.tx, id)
}

func (t *txStore) TablesByBranch(ctx context.Context, branchID uint64) ([]model.Table, error) {
	return tablesByBranch(ctx, t.tx, branchID)
}

// LockTables takes row locks on the given dining_tables rows in ascending
// id order, so two transactions locking overlapping sets cannot deadlock.
// Every writer of a table's reservations goes through this lock before it
// re-checks for conflicts.
func (t *txStore) LockTables(ctx context.Context, tableIDs ...uint64) error {
	if len(tableIDs) == 0 {
		return nil
	}
	ids := append([]uint64(nil), tableIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id FROM dining_tables WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id FOR UPDATE`, args...)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()
	found := make(map[uint64]bool, len(ids))
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return classify(err)
	}
	for _, id := range ids {
		if !found[id] {
			return ErrNotFound
		}
	}
	return nil
}
