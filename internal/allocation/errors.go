package allocation

import (
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ValidationError reports malformed input.  The caller has to correct the
// request; it is never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports that no table or slot is free for the request.  It
// is an expected outcome and its message is meant for the guest.
type ConflictError struct {
	// TableID is the table that was asked for, zero for automatic
	// assignment.
	TableID uint64
	// NextAvailable is the earliest instant a matching table frees up,
	// zero when unknown.
	NextAvailable time.Time
	// HoldMinutes is how long tables are held around the requested time.
	HoldMinutes int
	Reason      string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "no table available"
}

// AlreadyActiveError reports that the customer already holds an active,
// upcoming reservation.
type AlreadyActiveError struct {
	Folio    string
	StartUTC time.Time
}

func (e *AlreadyActiveError) Error() string {
	return fmt.Sprintf("customer already has active reservation %s", e.Folio)
}

// InvalidTransitionError reports a lifecycle transition that the current
// status does not allow.
type InvalidTransitionError struct {
	Folio string
	From  model.Status
	To    model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("reservation %s cannot move from %s to %s", e.Folio, e.From, e.To)
}

var errEmptyZone = errors.New("no time zone configured")

// TimezoneError reports a branch whose time zone cannot be loaded.
type TimezoneError struct {
	BranchID uint64
	Zone     string
	Err      error
}

func (e *TimezoneError) Error() string {
	return fmt.Sprintf("branch %d: unknown time zone %q: %v", e.BranchID, e.Zone, e.Err)
}

func (e *TimezoneError) Unwrap() error { return e.Err }
