package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/handler"
)

// RegisterOrders registers the order and order item endpoints. Customers
// pass the gate for their own orders; the handlers enforce ownership.
func RegisterOrders(e *echo.Echo, d Deps, h *handler.OrderHandler) {
	g := protected(e, d)

	// ---- Orders ----
	g.POST("/orders/create", h.Create, allow(d, access.Order, access.Create))
	g.GET("/orders/all", h.All, allow(d, access.Order, access.List))
	g.GET("/orders/bycustomer/:customerId", h.ByCustomer, allow(d, access.Order, access.ListByOwner))
	g.GET("/orders/:orderId", h.Get, allow(d, access.Order, access.Read))
	g.PUT("/orders/update/:orderId", h.Update, allow(d, access.Order, access.Update))
	g.DELETE("/orders/delete/:orderId", h.Delete, allow(d, access.Order, access.Delete))

	// ---- Order items ----
	g.POST("/orderitems/create", h.CreateItem, allow(d, access.OrderItem, access.Create))
	g.GET("/orderitems/all", h.AllItems, allow(d, access.OrderItem, access.List))
	g.GET("/orderitems/all/:orderId", h.ItemsByOrder, allow(d, access.OrderItem, access.ListByOwner))
	g.GET("/orderitems/:orderId/:itemId", h.GetItem, allow(d, access.OrderItem, access.Read))
	g.PUT("/orderitems/update/:orderId/:itemId", h.UpdateItem, allow(d, access.OrderItem, access.Update))
	g.DELETE("/orderitems/delete/:orderId/:itemId", h.DeleteItem, allow(d, access.OrderItem, access.Delete))
}
