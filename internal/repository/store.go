package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/juju/loggo"

	"github.com/iliyamo/table-reservation/internal/store"
)

var logger = loggo.GetLogger("tables.repository")

// MySQL error numbers the repository translates.
const (
	errDupEntry        = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// Unique key names from migrations/001_init.sql.
const (
	keyFolio      = "uq_reservations_folio"
	keyActiveSlot = "uq_reservations_active_slot"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every query helper
// can run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the MySQL implementation of store.Store.  All timestamps are
// written and read in UTC; the DSN built by database.Open pins loc=UTC.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// NewStore returns a Store bound to the provided database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying database handle.
func (s *Store) DB() *sql.DB { return s.db }

// txOptions runs transactions at READ COMMITTED.  Under InnoDB's default
// REPEATABLE READ the first plain SELECT fixes a snapshot, and a conflict
// query issued after LockTables would miss rows committed while the lock
// was awaited.  READ COMMITTED reads the latest committed rows on every
// statement, which is what store.Tx promises after LockTables.
var txOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// WithTx runs fn inside a transaction.  The transaction is rolled back
// when fn fails or panics and committed otherwise.  Driver errors raised by
// the commit are translated like any other write.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	committed = true
	return nil
}

// txStore implements store.Tx on top of a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// classify maps driver errors onto the repository sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case errDupEntry:
		switch {
		case strings.Contains(me.Message, keyFolio):
			return ErrDuplicateFolio
		case strings.Contains(me.Message, keyActiveSlot):
			return ErrSlotTaken
		}
		return ErrConflict
	case errDeadlock, errLockWaitTimeout:
		logger.Warningf("lock contention: %v", me)
		return ErrConflict
	}
	return err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
