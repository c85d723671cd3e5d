package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/handler"
)

// RegisterIdentity registers customer and staff management.
func RegisterIdentity(e *echo.Echo, d Deps, h *handler.IdentityHandler) {
	g := protected(e, d)

	g.POST("/customers/create", h.CreateCustomer, allow(d, access.Customer, access.Create))
	g.GET("/customers/all", h.ListCustomers, allow(d, access.Customer, access.List))
	g.GET("/customers/:id", h.GetCustomer, allow(d, access.Customer, access.Read))
	g.PUT("/customers/update/:id", h.UpdateCustomer, allow(d, access.Customer, access.Update))
	g.DELETE("/customers/delete/:id", h.DeleteCustomer, allow(d, access.Customer, access.Delete))

	g.POST("/staffs/create", h.CreateStaff, allow(d, access.Staff, access.Create))
	g.GET("/staffs/all", h.ListStaff, allow(d, access.Staff, access.List))
	g.GET("/staffs/:id", h.GetStaff, allow(d, access.Staff, access.Read))
	g.PUT("/staffs/update/:id", h.UpdateStaff, allow(d, access.Staff, access.Update))
	g.DELETE("/staffs/delete/:id", h.DeleteStaff, allow(d, access.Staff, access.Delete))
}
