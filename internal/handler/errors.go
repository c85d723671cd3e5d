package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/middleware"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
	"github.com/iliyamo/bike-store-inventory/internal/service"
)

// errBadRequest marks malformed bodies and path parameters.
var errBadRequest = errors.New("bad request")

// writeError maps a domain error to its HTTP response. Not-found,
// conflict and bad input answers carry the message as plain text;
// forbidden answers carry no body.
func writeError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, access.ErrForbidden):
		return c.NoContent(http.StatusForbidden)
	case errors.Is(err, repository.ErrNotFound):
		return c.String(http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrConflict), errors.Is(err, service.ErrInvalidStatusTransition):
		return c.String(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidInput), errors.Is(err, errBadRequest):
		return c.String(http.StatusBadRequest, err.Error())
	case errors.As(err, &verrs):
		return c.String(http.StatusUnprocessableEntity, verrs.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "timeout"})
	default:
		slog.Default().Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// bind decodes the body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return pkgerrors.Wrap(errBadRequest, "invalid body")
	}
	return c.Validate(req)
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.Wrapf(errBadRequest, "invalid %s", name)
	}
	return id, nil
}

// requireOwner denies customers access to records of other customers.
// Staff callers pass.
func requireOwner(c echo.Context, customerID int64) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return access.ErrForbidden
	}
	if caller.IsCustomer() && caller.ID != customerID {
		return access.ErrForbidden
	}
	return nil
}
