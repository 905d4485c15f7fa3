package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All routes
// require a valid JWT and the CUSTOMER role.  Customers book, view, confirm
// and cancel their own reservations; ownership is checked in the handler.
// Booking writes are rate limited.
func RegisterCustomer(e *echo.Echo, h *handler.Handler, opts Options) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleCustomer),
	)
	limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis)
	g.POST("/reservations", h.CreateReservation, limit)
	g.GET("/reservations/:id", h.GetReservation)
	g.POST("/reservations/:id/confirm", h.ConfirmReservation, limit)
	g.DELETE("/reservations/:id", h.CancelReservation)
}
