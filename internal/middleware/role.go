package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bike-store-inventory/internal/access"
)

// RequirePermission returns a middleware that asks gate whether the
// caller's role may run op on res.  It must run after JWTAuth.  Denied
// requests are answered with 403 and an empty body before the handler
// runs, so no state changes.
func RequirePermission(gate *access.Gate, res access.Resource, op access.Operation) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            caller, ok := CallerFrom(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
            }
            if err := gate.Check(caller.Role, res, op); err != nil {
                return c.NoContent(http.StatusForbidden)
            }
            return next(c)
        }
    }
}
