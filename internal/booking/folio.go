package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/store"
)

const folioAttempts = 5

// NewFolio returns a booking code made of the local service date and a
// random suffix, e.g. 20261018-4F9A2C.
func NewFolio(local time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return local.Format("20060102") + "-" + suffix
}

// insertWithFolio inserts res under a fresh folio, drawing a new one
// whenever the store reports a collision.
func insertWithFolio(ctx context.Context, tx store.Tx, res *model.Reservation, local time.Time) error {
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			res.Folio = NewFolio(local)
			return tx.InsertReservation(ctx, res)
		},
		IsFatalError: func(err error) bool {
			return !errors.Is(err, repository.ErrDuplicateFolio)
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("folio attempt %d: %v", attempt, err)
		},
		Attempts: folioAttempts,
		Delay:    time.Millisecond,
		Clock:    clock.WallClock,
		Stop:     ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) {
		return retry.LastError(err)
	}
	return err
}
