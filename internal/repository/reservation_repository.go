package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

const reservationColumns = `id, folio, branch_id, table_id, customer_id, party_size, start_utc, end_utc,
	time_zone, status, staff_created, contact_name, contact_email, contact_phone, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(sc rowScanner) (model.Reservation, error) {
	var r model.Reservation
	var tableID, customerID sql.NullInt64
	var status string
	err := sc.Scan(
		&r.ID, &r.Folio, &r.BranchID, &tableID, &customerID, &r.PartySize, &r.StartUTC, &r.EndUTC,
		&r.TimeZone, &status, &r.StaffCreated, &r.Contact.Name, &r.Contact.Email, &r.Contact.Phone,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	if tableID.Valid {
		id := uint64(tableID.Int64)
		r.TableID = &id
	}
	if customerID.Valid {
		id := uint64(customerID.Int64)
		r.CustomerID = &id
	}
	r.Status = model.Status(status)
	return r, nil
}

func queryReservations(ctx context.Context, q querier, query string, args ...any) ([]model.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func getReservation(ctx context.Context, q querier, id uint64, forUpdate bool) (model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	r, err := scanReservation(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return model.Reservation{}, classify(err)
	}
	return r, nil
}

// overlappingReservations applies the half-open overlap test in SQL:
// start_utc < to AND end_utc > from.
func overlappingReservations(ctx context.Context, q querier, tableID uint64, from, to time.Time) ([]model.Reservation, error) {
	return queryReservations(ctx, q,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE table_id = ? AND status IN ('PEND','CONF') AND start_utc < ? AND end_utc > ?
		 ORDER BY start_utc, id`,
		tableID, to.UTC(), from.UTC())
}

func activeForCustomer(ctx context.Context, q querier, customerID uint64, after time.Time) ([]model.Reservation, error) {
	return queryReservations(ctx, q,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE customer_id = ? AND status IN ('PEND','CONF') AND start_utc > ?
		 ORDER BY start_utc, id`,
		customerID, after.UTC())
}

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// Reservation implements store.Store.
func (s *Store) Reservation(ctx context.Context, id uint64) (model.Reservation, error) {
	return getReservation(ctx, s.db, id, false)
}

// ReservationByFolio implements store.Store.
func (s *Store) ReservationByFolio(ctx context.Context, folio string) (model.Reservation, error) {
	r, err := scanReservation(s.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE folio = ? LIMIT 1`, folio))
	if err != nil {
		return model.Reservation{}, classify(err)
	}
	return r, nil
}

// OverlappingReservations implements store.Reader.
func (s *Store) OverlappingReservations(ctx context.Context, tableID uint64, from, to time.Time) ([]model.Reservation, error) {
	return overlappingReservations(ctx, s.db, tableID, from, to)
}

// ActiveForCustomer implements store.Store.
func (s *Store) ActiveForCustomer(ctx context.Context, customerID uint64, after time.Time) ([]model.Reservation, error) {
	return activeForCustomer(ctx, s.db, customerID, after)
}

// ReservationsForBranch implements store.Store.  It returns reservations
// in every status so staff see the full day sheet.
func (s *Store) ReservationsForBranch(ctx context.Context, branchID uint64, from, to time.Time) ([]model.Reservation, error) {
	return queryReservations(ctx, s.db,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE branch_id = ? AND start_utc >= ? AND start_utc < ?
		 ORDER BY start_utc, id`,
		branchID, from.UTC(), to.UTC())
}

// ExpireHolds implements store.Store.  It is a single conditional UPDATE,
// so concurrent sweeps cannot interfere with each other.
func (s *Store) ExpireHolds(ctx context.Context, createdBefore, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reservations SET status = 'CANC', updated_at = ?
		 WHERE status = 'HOLD' AND created_at < ?`,
		now.UTC(), createdBefore.UTC())
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

// ExpirePending implements store.Store.
func (s *Store) ExpirePending(ctx context.Context, startedBefore, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reservations SET status = 'CANC', updated_at = ?
		 WHERE status = 'PEND' AND start_utc < ?`,
		now.UTC(), startedBefore.UTC())
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

func (t *txStore) OverlappingReservations(ctx context.Context, tableID uint64, from, to time.Time) ([]model.Reservation, error) {
	return overlappingReservations(ctx, t.tx, tableID, from, to)
}

// Reservation locks the row for the rest of the transaction.
func (t *txStore) Reservation(ctx context.Context, id uint64) (model.Reservation, error) {
	return getReservation(ctx, t.tx, id, true)
}

func (t *txStore) ActiveForCustomer(ctx context.Context, customerID uint64, after time.Time) ([]model.Reservation, error) {
	return activeForCustomer(ctx, t.tx, customerID, after)
}

// InsertReservation inserts res and populates its generated ID.  A folio
// collision yields ErrDuplicateFolio, a clash on the active-slot key
// ErrSlotTaken.
func (t *txStore) InsertReservation(ctx context.Context, res *model.Reservation) error {
	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO reservations (folio, branch_id, table_id, customer_id, party_size, start_utc, end_utc,
			time_zone, status, staff_created, contact_name, contact_email, contact_phone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Folio, res.BranchID, nullableID(res.TableID), nullableID(res.CustomerID), res.PartySize,
		res.StartUTC.UTC(), res.EndUTC.UTC(), res.TimeZone, string(res.Status), res.StaffCreated,
		res.Contact.Name, res.Contact.Email, res.Contact.Phone, res.CreatedAt.UTC(), res.UpdatedAt.UTC(),
	)
	if err != nil {
		return classify(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// UpdateReservation writes back the mutable columns of res.
func (t *txStore) UpdateReservation(ctx context.Context, res *model.Reservation) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE reservations
		 SET table_id = ?, party_size = ?, start_utc = ?, end_utc = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		nullableID(res.TableID), res.PartySize, res.StartUTC.UTC(), res.EndUTC.UTC(),
		string(res.Status), res.UpdatedAt.UTC(), res.ID,
	)
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
