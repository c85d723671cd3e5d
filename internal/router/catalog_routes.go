package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/handler"
	"github.com/iliyamo/bike-store-inventory/internal/middleware"
)

// RegisterCatalog registers brands, categories, products and stores.
// Reads go through the Redis response cache; writes drop the cached
// reads of their collection.
func RegisterCatalog(e *echo.Echo, d Deps, h *handler.CatalogHandler) {
	g := protected(e, d)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	invalidate := middleware.InvalidateCache(d.Cache, d.Redis)

	resources := []struct {
		path string
		res  access.Resource
		ep   handler.CatalogEndpoints
	}{
		{"/brands", access.Brand, h.Brands},
		{"/categories", access.Category, h.Categories},
		{"/products", access.Product, h.Products},
		{"/stores", access.Store, h.Stores},
	}
	for _, r := range resources {
		g.POST(r.path+"/create", r.ep.Create, allow(d, r.res, access.Create), invalidate)
		g.GET(r.path+"/all", r.ep.All, allow(d, r.res, access.List), cache)
		g.GET(r.path+"/:id", r.ep.Get, allow(d, r.res, access.Read), cache)
		g.PUT(r.path+"/update/:id", r.ep.Update, allow(d, r.res, access.Update), invalidate)
		g.DELETE(r.path+"/delete/:id", r.ep.Delete, allow(d, r.res, access.Delete), invalidate)
	}
}
