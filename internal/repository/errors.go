// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking engine and the handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist (or is not
// visible within the caller's branch).  Handlers translate it into 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource that belongs to another customer.  Handlers should translate
// this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state.  Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicateFolio is returned by InsertReservation when the folio is
// already taken.  The booking engine retries with a fresh folio.
var ErrDuplicateFolio = errors.New("duplicate folio")

// ErrSlotTaken is returned when the storage-level uniqueness backstop on
// active table slots rejects a write.  The booking engine reports it as a
// conflict, exactly like a conflict found before the write.
var ErrSlotTaken = errors.New("table slot already taken")
