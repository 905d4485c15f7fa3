package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

const blockColumns = `id, branch_id, table_id, start_utc, end_utc, reason, created_at`

func queryBlocks(ctx context.Context, q querier, query string, args ...any) ([]model.ManualBlock, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.ManualBlock
	for rows.Next() {
		var b model.ManualBlock
		var tableID sql.NullInt64
		var reason sql.NullString
		if err := rows.Scan(&b.ID, &b.BranchID, &tableID, &b.StartUTC, &b.EndUTC, &reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		if tableID.Valid {
			id := uint64(tableID.Int64)
			b.TableID = &id
		}
		b.Reason = reason.String
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// overlappingBlocks returns blocks of the table and branch-wide blocks of
// the branch that intersect [from, to).
func overlappingBlocks(ctx context.Context, q querier, branchID, tableID uint64, from, to time.Time) ([]model.ManualBlock, error) {
	return queryBlocks(ctx, q,
		`SELECT `+blockColumns+`
		 FROM table_blocks
		 WHERE branch_id = ? AND (table_id = ? OR table_id IS NULL) AND start_utc < ? AND end_utc > ?
		 ORDER BY start_utc, id`,
		branchID, tableID, to.UTC(), from.UTC())
}

// OverlappingBlocks implements store.Reader.
func (s *Store) OverlappingBlocks(ctx context.Context, branchID, tableID uint64, from, to time.Time) ([]model.ManualBlock, error) {
	return overlappingBlocks(ctx, s.db, branchID, tableID, from, to)
}

func (t *txStore) OverlappingBlocks(ctx context.Context, branchID, tableID uint64, from, to time.Time) ([]model.ManualBlock, error) {
	return overlappingBlocks(ctx, t.tx, branchID, tableID, from, to)
}

// ListBlocks implements store.Store.
func (s *Store) ListBlocks(ctx context.Context, branchID uint64, from, to time.Time) ([]model.ManualBlock, error) {
	return queryBlocks(ctx, s.db,
		`SELECT `+blockColumns+`
		 FROM table_blocks
		 WHERE branch_id = ? AND start_utc < ? AND end_utc > ?
		 ORDER BY start_utc, id`,
		branchID, to.UTC(), from.UTC())
}

// CreateBlock implements store.Store.  A table-scoped block must reference
// a table of the same branch; otherwise ErrNotFound is returned.
func (s *Store) CreateBlock(ctx context.Context, block *model.ManualBlock) error {
	if block.TableID != nil {
		var branchID uint64
		err := s.db.QueryRowContext(ctx, `SELECT branch_id FROM dining_tables WHERE id = ?`, *block.TableID).Scan(&branchID)
		if err != nil {
			return classify(err)
		}
		if branchID != block.BranchID {
			return ErrNotFound
		}
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO table_blocks (branch_id, table_id, start_utc, end_utc, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		block.BranchID, nullableID(block.TableID), block.StartUTC.UTC(), block.EndUTC.UTC(),
		block.Reason, block.CreatedAt.UTC(),
	)
	if err != nil {
		return classify(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	block.ID = uint64(id)
	return nil
}

// DeleteBlock implements store.Store.
func (s *Store) DeleteBlock(ctx context.Context, branchID, id uint64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM table_blocks WHERE id = ? AND branch_id = ?`, id, branchID)
	if err != nil {
		return classify(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
