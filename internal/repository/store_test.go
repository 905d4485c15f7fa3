package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-sql-driver/mysql"
)

func TestClassify(t *testing.T) {
	c := qt.New(t)
	other := errors.New("connection reset")
	noTable := &mysql.MySQLError{Number: 1146, Message: "Table 'tables.nope' doesn't exist"}

	tests := []struct {
		about string
		err   error
		want  error
	}{{
		about: "nil",
	}, {
		about: "no rows",
		err:   sql.ErrNoRows,
		want:  ErrNotFound,
	}, {
		about: "wrapped no rows",
		err:   fmt.Errorf("scanning: %w", sql.ErrNoRows),
		want:  ErrNotFound,
	}, {
		about: "duplicate folio",
		err: &mysql.MySQLError{Number: 1062,
			Message: "Duplicate entry '20261014-4F9A2C' for key 'reservations.uq_reservations_folio'"},
		want: ErrDuplicateFolio,
	}, {
		about: "active slot taken",
		err: &mysql.MySQLError{Number: 1062,
			Message: "Duplicate entry '3-2026-10-15 00:00:00' for key 'reservations.uq_reservations_active_slot'"},
		want: ErrSlotTaken,
	}, {
		about: "other unique key",
		err: &mysql.MySQLError{Number: 1062,
			Message: "Duplicate entry '1-4' for key 'dining_tables.uq_tables_branch_number'"},
		want: ErrConflict,
	}, {
		about: "deadlock",
		err:   &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"},
		want:  ErrConflict,
	}, {
		about: "lock wait timeout",
		err:   &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"},
		want:  ErrConflict,
	}, {
		about: "wrapped duplicate",
		err: fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062,
			Message: "Duplicate entry 'x' for key 'reservations.uq_reservations_folio'"}),
		want: ErrDuplicateFolio,
	}, {
		about: "unrelated server error",
		err:   noTable,
		want:  noTable,
	}, {
		about: "non driver error",
		err:   other,
		want:  other,
	}}
	for _, test := range tests {
		c.Run(test.about, func(c *qt.C) {
			c.Assert(classify(test.err), qt.Equals, test.want)
		})
	}
}

func TestPlaceholders(t *testing.T) {
	c := qt.New(t)
	c.Assert(placeholders(1), qt.Equals, "?")
	c.Assert(placeholders(3), qt.Equals, "?,?,?")
}

func TestTransactionsReadCommitted(t *testing.T) {
	c := qt.New(t)
	c.Assert(txOptions.Isolation, qt.Equals, sql.LevelReadCommitted)
	c.Assert(txOptions.ReadOnly, qt.IsFalse)
}
