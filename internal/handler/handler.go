package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/juju/clock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/store"
)

// Handler bundles the booking engine and the store for the HTTP API.
// Authentication and role checks run in middleware before any method is
// invoked.
type Handler struct {
	Lifecycle *booking.Lifecycle
	Store     store.Store
	Ops       *allocation.TimeOps
	Clock     clock.Clock
}

// New constructs a Handler and panics if any dependency is nil.
func New(l *booking.Lifecycle, st store.Store, ops *allocation.TimeOps, clk clock.Clock) *Handler {
	if l == nil || st == nil || ops == nil || clk == nil {
		panic("nil dependency passed to handler.New")
	}
	return &Handler{Lifecycle: l, Store: st, Ops: ops, Clock: clk}
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// parseDay reads a YYYY-MM-DD query value as a date in loc; empty means
// today.
func parseDay(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	if raw == "" {
		return now.In(loc), nil
	}
	return time.ParseInLocation(model.ServiceDateLayout, raw, loc)
}

// parseStart reads a booking start.  start is RFC 3339; otherwise date
// and time are local to the branch zone.
func parseStart(start, date, clock string, loc *time.Location) (time.Time, error) {
	if start != "" {
		return time.Parse(time.RFC3339, start)
	}
	if date == "" || clock == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(model.ServiceDateLayout+" 15:04", date+" "+clock, loc)
}

// writeError maps engine errors to HTTP responses.
func writeError(c echo.Context, err error) error {
	var (
		ve *allocation.ValidationError
		ce *allocation.ConflictError
		ae *allocation.AlreadyActiveError
		ie *allocation.InvalidTransitionError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &ce):
		body := echo.Map{"error": ce.Error(), "hold_minutes": ce.HoldMinutes}
		if !ce.NextAvailable.IsZero() {
			body["next_available"] = ce.NextAvailable.UTC().Format(time.RFC3339)
		}
		if ce.TableID != 0 {
			body["table_id"] = ce.TableID
		}
		return c.JSON(http.StatusConflict, body)
	case errors.As(err, &ae):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": ae.Error(),
			"code":  "already_active",
			"folio": ae.Folio,
			"start": ae.StartUTC.UTC().Format(time.RFC3339),
		})
	case errors.As(err, &ie):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": ie.Error(), "status": ie.From})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
