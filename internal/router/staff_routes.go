package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
)

// RegisterStaff registers STAFF-scoped endpoints under /v1/staff.
// All routes require a valid JWT and the STAFF role.
func RegisterStaff(e *echo.Echo, h *handler.Handler, opts Options) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleStaff),
	)

	// ---- Reservations ----
	g.POST("/reservations", h.StaffCreateReservation, middleware.NewTokenBucket(opts.RateLimit, opts.Redis))
	g.GET("/reservations/:id", h.StaffGetReservation)
	g.POST("/reservations/:id/confirm", h.StaffConfirm)
	g.POST("/reservations/:id/cancel", h.StaffCancel)
	g.POST("/reservations/:id/no-show", h.StaffNoShow)
	g.POST("/reservations/:id/move", h.StaffMove)
	g.GET("/reservations/:id/candidates", h.StaffCandidates)

	// ---- Branch day view ----
	g.GET("/branches/:id/reservations", h.DaySheet)
	g.GET("/branches/:id/blocks", h.ListBlocks)
	g.POST("/branches/:id/blocks", h.CreateBlock)
	g.DELETE("/branches/:id/blocks/:block_id", h.DeleteBlock)

	// ---- Maintenance ----
	g.POST("/sweep", h.Sweep)
}
