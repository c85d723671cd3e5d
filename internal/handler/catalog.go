package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/service"
)

// crud wires the five single-key catalog endpoints of one resource.
type crud[T any] struct {
	create func(context.Context, *T) error
	get    func(context.Context, int64) (T, error)
	list   func(context.Context) ([]T, error)
	update func(context.Context, *T) error
	delete func(context.Context, int64) error
	setID  func(*T, int64)
}

func (h crud[T]) Create(c echo.Context) error {
	var v T
	if err := bind(c, &v); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.create(ctx, &v); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h crud[T]) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h crud[T]) All(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.list(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h crud[T]) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var v T
	if err := bind(c, &v); err != nil {
		return writeError(c, err)
	}
	h.setID(&v, id)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.update(ctx, &v); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h crud[T]) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CatalogEndpoints is the handler set of one catalog resource.
type CatalogEndpoints interface {
	Create(echo.Context) error
	Get(echo.Context) error
	All(echo.Context) error
	Update(echo.Context) error
	Delete(echo.Context) error
}

// CatalogHandler serves brands, categories, products and stores.
type CatalogHandler struct {
	Brands     CatalogEndpoints
	Categories CatalogEndpoints
	Products   CatalogEndpoints
	Stores     CatalogEndpoints
}

func NewCatalogHandler(s *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		Brands: crud[model.Brand]{
			create: s.Brands.Create, get: s.Brands.GetByID, list: s.Brands.List,
			update: s.Brands.Update, delete: s.Brands.Delete,
			setID: func(b *model.Brand, id int64) { b.ID = id },
		},
		Categories: crud[model.Category]{
			create: s.Categories.Create, get: s.Categories.GetByID, list: s.Categories.List,
			update: s.Categories.Update, delete: s.Categories.Delete,
			setID: func(c *model.Category, id int64) { c.ID = id },
		},
		Products: crud[model.Product]{
			create: s.CreateProduct, get: s.Products.GetByID, list: s.Products.List,
			update: s.UpdateProduct, delete: s.Products.Delete,
			setID: func(p *model.Product, id int64) { p.ID = id },
		},
		Stores: crud[model.Store]{
			create: s.Stores.Create, get: s.Stores.GetByID, list: s.Stores.List,
			update: s.Stores.Update, delete: s.Stores.Delete,
			setID: func(st *model.Store, id int64) { st.ID = id },
		},
	}
}
