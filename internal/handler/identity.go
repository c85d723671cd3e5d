package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/service"
)

// IdentityHandler serves /v1/customers and /v1/staffs.
type IdentityHandler struct {
	Identity *service.IdentityService
}

func NewIdentityHandler(s *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{Identity: s}
}

type customerReq struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"required,email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

func (r customerReq) toModel() model.Customer {
	return model.Customer{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Email:     r.Email,
		Street:    r.Street,
		City:      r.City,
		State:     r.State,
		ZipCode:   r.ZipCode,
	}
}

type staffReq struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Active    bool   `json:"active"`
	StoreID   int64  `json:"store_id" validate:"required,gt=0"`
	ManagerID *int64 `json:"manager_id"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

func (r staffReq) toModel() model.Staff {
	return model.Staff{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Active:    r.Active,
		StoreID:   r.StoreID,
		ManagerID: r.ManagerID,
	}
}

// ----- customers -----

func (h *IdentityHandler) CreateCustomer(c echo.Context) error {
	var req customerReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	cust := req.toModel()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Identity.CreateCustomer(ctx, &cust, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cust)
}

func (h *IdentityHandler) GetCustomer(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Identity.GetCustomer(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *IdentityHandler) ListCustomers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Identity.ListCustomers(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateCustomer overwrites a profile. Customers may only update their own.
func (h *IdentityHandler) UpdateCustomer(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := requireOwner(c, id); err != nil {
		return writeError(c, err)
	}
	var req customerReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	cust := req.toModel()
	cust.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Identity.UpdateCustomer(ctx, &cust, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *IdentityHandler) DeleteCustomer(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Identity.DeleteCustomer(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- staff -----

func (h *IdentityHandler) CreateStaff(c echo.Context) error {
	var req staffReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	st := req.toModel()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Identity.CreateStaff(ctx, &st, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *IdentityHandler) GetStaff(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	st, err := h.Identity.GetStaff(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *IdentityHandler) ListStaff(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Identity.ListStaff(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *IdentityHandler) UpdateStaff(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req staffReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	st := req.toModel()
	st.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Identity.UpdateStaff(ctx, &st, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *IdentityHandler) DeleteStaff(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Identity.DeleteStaff(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
