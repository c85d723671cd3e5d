package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bike-store-inventory/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the principal id, kind and role claims into the request context.
// Handlers read them back with CallerFrom.  Requests without a valid token
// are answered with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            scheme, raw, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
            if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
                return unauthorized(c, "missing bearer token")
            }

            claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
            if err != nil {
                return unauthorized(c, "invalid token")
            }
            id, err := claims.PrincipalID()
            if err != nil || claims.Role == "" {
                return unauthorized(c, "invalid claims")
            }

            c.Set(ctxUserID, id)
            c.Set(ctxKind, claims.Kind)
            c.Set(ctxRole, claims.Role)
            return next(c)
        }
    }
}

func unauthorized(c echo.Context, msg string) error {
    c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="bikes"`)
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}
