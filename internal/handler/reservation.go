package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// createRequest is the body of POST /v1/reservations.  The start is either
// an RFC 3339 instant or a branch-local date and time.
type createRequest struct {
	BranchID  uint64 `json:"branch_id"`
	PartySize int    `json:"party_size"`
	Start     string `json:"start"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Hold      bool   `json:"hold"`
	// Staff-only fields.
	TableID uint64        `json:"table_id"`
	Force   bool          `json:"force"`
	Contact model.Contact `json:"contact"`
}

// bindRequest decodes the body and resolves the start through the branch
// zone.
func (h *Handler) bindRequest(c echo.Context) (booking.Request, error) {
	var body createRequest
	if err := c.Bind(&body); err != nil {
		return booking.Request{}, allocation.Invalid("body", "cannot be decoded")
	}
	if body.BranchID == 0 {
		return booking.Request{}, allocation.Invalid("branch_id", "is required")
	}
	branch, err := h.Store.Branch(c.Request().Context(), body.BranchID)
	if err != nil {
		return booking.Request{}, err
	}
	start, err := parseStart(body.Start, body.Date, body.Time, h.Ops.LocationOrFallback(branch))
	if err != nil {
		return booking.Request{}, allocation.Invalid("start", "must be RFC 3339, or date YYYY-MM-DD with time HH:MM")
	}
	return booking.Request{
		BranchID:  branch.ID,
		TableID:   body.TableID,
		PartySize: body.PartySize,
		Start:     start,
		Hold:      body.Hold,
		Force:     body.Force,
		Contact:   body.Contact,
	}, nil
}

// CreateReservation handles POST /v1/reservations for customers.  The
// table is always chosen by the allocator.  It returns 201 with the
// reservation, 409 with next_available on conflict, or 409 with code
// already_active when the customer has an upcoming booking.
func (h *Handler) CreateReservation(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	req, err := h.bindRequest(c)
	if err != nil {
		return writeError(c, err)
	}
	if req.TableID != 0 || req.Force {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "table choice is reserved for staff"})
	}
	req.CustomerID = &userID
	req.Contact = model.Contact{}
	res, err := h.Lifecycle.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ownReservation loads reservation :id and checks it belongs to the caller.
func (h *Handler) ownReservation(c echo.Context) (model.Reservation, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return model.Reservation{}, repository.ErrForbidden
	}
	id, ok := parseID(c, "id")
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	res, err := h.Lifecycle.Get(c.Request().Context(), id)
	if err != nil {
		return model.Reservation{}, err
	}
	if res.CustomerID == nil || *res.CustomerID != userID {
		return model.Reservation{}, repository.ErrForbidden
	}
	return res, nil
}

// GetReservation handles GET /v1/reservations/:id.
func (h *Handler) GetReservation(c echo.Context) error {
	res, err := h.ownReservation(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ConfirmReservation handles POST /v1/reservations/:id/confirm.
func (h *Handler) ConfirmReservation(c echo.Context) error {
	res, err := h.ownReservation(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.Lifecycle.Confirm(c.Request().Context(), res.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// CancelReservation handles DELETE /v1/reservations/:id.
func (h *Handler) CancelReservation(c echo.Context) error {
	res, err := h.ownReservation(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.Lifecycle.Cancel(c.Request().Context(), res.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
