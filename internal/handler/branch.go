package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/model"
)

// GetBranch handles GET /v1/branches/:id.  It returns the branch with its
// tables; the route is cached.
func (h *Handler) GetBranch(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid branch id"})
	}
	ctx := c.Request().Context()
	branch, err := h.Store.Branch(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	tables, err := h.Store.TablesByBranch(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if tables == nil {
		tables = []model.Table{}
	}
	return c.JSON(http.StatusOK, echo.Map{"branch": branch, "tables": tables})
}

type slotView struct {
	Local string    `json:"local"`
	UTC   time.Time `json:"utc"`
}

type tableSlotsView struct {
	Table model.Table `json:"table"`
	Slots []slotView  `json:"slots"`
}

// Availability handles GET /v1/branches/:id/availability.  Query
// parameters: party (required), date (YYYY-MM-DD, branch-local, default
// today) and table_id (optional).  Expired holds and overdue pending
// bookings are swept before slots are computed.
func (h *Handler) Availability(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid branch id"})
	}
	party, err := strconv.Atoi(c.QueryParam("party"))
	if err != nil || party <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party must be a positive integer"})
	}
	var tableID uint64
	if raw := c.QueryParam("table_id"); raw != "" {
		if tableID, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table_id"})
		}
	}
	ctx := c.Request().Context()
	branch, err := h.Store.Branch(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	loc := h.Ops.LocationOrFallback(branch)
	day, err := parseDay(c.QueryParam("date"), loc, h.Clock.Now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	avail, err := h.Lifecycle.Availability(ctx, branch.ID, tableID, day, party)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]tableSlotsView, 0, len(avail))
	for _, ts := range avail {
		v := tableSlotsView{Table: ts.Table, Slots: make([]slotView, 0, len(ts.Slots))}
		for _, s := range ts.Slots {
			v.Slots = append(v.Slots, slotView{Local: s.In(loc).Format("15:04"), UTC: s.UTC()})
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"branch_id": branch.ID,
		"date":      day.In(loc).Format(model.ServiceDateLayout),
		"time_zone": loc.String(),
		"party":     party,
		"tables":    out,
	})
}
