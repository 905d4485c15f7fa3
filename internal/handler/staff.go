package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/model"
)

// StaffCreateReservation handles POST /v1/staff/reservations.  Staff may
// name a table, force past big-table protection and book for a contact
// without a customer account.
func (h *Handler) StaffCreateReservation(c echo.Context) error {
	req, err := h.bindRequest(c)
	if err != nil {
		return writeError(c, err)
	}
	req.Staff = true
	if req.Contact.Name == "" {
		return writeError(c, allocation.Invalid("contact.name", "is required"))
	}
	res, err := h.Lifecycle.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// StaffGetReservation handles GET /v1/staff/reservations/:id where id is
// a numeric id or a folio.
func (h *Handler) StaffGetReservation(c echo.Context) error {
	ref := c.Param("id")
	ctx := c.Request().Context()
	var (
		res model.Reservation
		err error
	)
	if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		res, err = h.Lifecycle.Get(ctx, id)
	} else {
		res, err = h.Lifecycle.GetByFolio(ctx, ref)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) staffTransition(c echo.Context, fn func(context.Context, uint64) (model.Reservation, error)) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := fn(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// StaffConfirm handles POST /v1/staff/reservations/:id/confirm.
func (h *Handler) StaffConfirm(c echo.Context) error {
	return h.staffTransition(c, h.Lifecycle.Confirm)
}

// StaffCancel handles POST /v1/staff/reservations/:id/cancel.
func (h *Handler) StaffCancel(c echo.Context) error {
	return h.staffTransition(c, h.Lifecycle.Cancel)
}

// StaffNoShow handles POST /v1/staff/reservations/:id/no-show.
func (h *Handler) StaffNoShow(c echo.Context) error {
	return h.staffTransition(c, h.Lifecycle.MarkNoShow)
}

// StaffMove handles POST /v1/staff/reservations/:id/move with body
// {"table_id": N, "force": bool}.  A refused move answers 409 with the
// reason.
func (h *Handler) StaffMove(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		TableID uint64 `json:"table_id"`
		Force   bool   `json:"force"`
	}
	if err := c.Bind(&body); err != nil || body.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id is required"})
	}
	out, err := h.Lifecycle.Move(c.Request().Context(), id, body.TableID, body.Force)
	if err != nil {
		return writeError(c, err)
	}
	if !out.Moved {
		return c.JSON(http.StatusConflict, out)
	}
	return c.JSON(http.StatusOK, out)
}

// StaffCandidates handles GET /v1/staff/reservations/:id/candidates.
func (h *Handler) StaffCandidates(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	force, _ := strconv.ParseBool(c.QueryParam("force"))
	out, err := h.Lifecycle.Candidates(c.Request().Context(), id, force)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		out = []allocation.Candidate{}
	}
	return c.JSON(http.StatusOK, out)
}

// branchDay resolves :id and the optional ?date= of a staff day view.
func (h *Handler) branchDay(c echo.Context) (model.Branch, time.Time, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return model.Branch{}, time.Time{}, allocation.Invalid("branch_id", "must be a positive integer")
	}
	branch, err := h.Store.Branch(c.Request().Context(), id)
	if err != nil {
		return model.Branch{}, time.Time{}, err
	}
	day, err := parseDay(c.QueryParam("date"), h.Ops.LocationOrFallback(branch), h.Clock.Now())
	if err != nil {
		return model.Branch{}, time.Time{}, allocation.Invalid("date", "must be YYYY-MM-DD")
	}
	return branch, day, nil
}

// DaySheet handles GET /v1/staff/branches/:id/reservations?date=.
func (h *Handler) DaySheet(c echo.Context) error {
	branch, day, err := h.branchDay(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.Lifecycle.DaySheet(c.Request().Context(), branch.ID, day)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		out = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, out)
}

// ListBlocks handles GET /v1/staff/branches/:id/blocks?date=.
func (h *Handler) ListBlocks(c echo.Context) error {
	branch, day, err := h.branchDay(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.Lifecycle.Blocks(c.Request().Context(), branch.ID, day)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		out = []model.ManualBlock{}
	}
	return c.JSON(http.StatusOK, out)
}

// CreateBlock handles POST /v1/staff/branches/:id/blocks with body
// {"table_id": N (optional), "start": RFC3339, "end": RFC3339, "reason": ""}.
func (h *Handler) CreateBlock(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid branch id"})
	}
	var body struct {
		TableID *uint64   `json:"table_id"`
		Start   time.Time `json:"start"`
		End     time.Time `json:"end"`
		Reason  string    `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	block, err := h.Lifecycle.CreateBlock(c.Request().Context(), model.ManualBlock{
		BranchID: id,
		TableID:  body.TableID,
		StartUTC: body.Start,
		EndUTC:   body.End,
		Reason:   body.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, block)
}

// DeleteBlock handles DELETE /v1/staff/branches/:id/blocks/:block_id.
func (h *Handler) DeleteBlock(c echo.Context) error {
	id, ok := parseID(c, "id")
	blockID, ok2 := parseID(c, "block_id")
	if !ok || !ok2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Lifecycle.DeleteBlock(c.Request().Context(), id, blockID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Sweep handles POST /v1/staff/sweep, running both expiry passes now.
func (h *Handler) Sweep(c echo.Context) error {
	out, err := h.Lifecycle.Sweep(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
