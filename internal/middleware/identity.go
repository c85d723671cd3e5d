package middleware

// identity.go defines the context keys JWTAuth fills in and the helpers
// that read them back.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bike-store-inventory/internal/access"
)

const (
    ctxUserID = "user_id"
    ctxKind   = "kind"
    ctxRole   = "role"
)

// Caller is the authenticated principal of a request.
type Caller struct {
    ID   int64
    Kind string // customer | staff
    Role access.Role
}

// IsCustomer reports whether the caller authenticated as a customer.
func (c Caller) IsCustomer() bool { return c.Role == access.RoleUser }

// CallerFrom returns the caller stored by JWTAuth. ok is false on
// unauthenticated requests.
func CallerFrom(c echo.Context) (Caller, bool) {
    id, ok := c.Get(ctxUserID).(int64)
    if !ok {
        return Caller{}, false
    }
    kind, _ := c.Get(ctxKind).(string)
    role, _ := c.Get(ctxRole).(string)
    return Caller{ID: id, Kind: kind, Role: access.Role(role)}, true
}

// userID returns a rate limit / log friendly identifier for the caller,
// "anon" when the request is unauthenticated.
func userID(c echo.Context) string {
    caller, ok := CallerFrom(c)
    if !ok {
        return "anon"
    }
    return caller.Kind + ":" + strconv.FormatInt(caller.ID, 10)
}
