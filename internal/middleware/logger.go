package middleware

import (
    "log/slog"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
)

// HeaderXRequestID carries the request id in both directions.
const HeaderXRequestID = echo.HeaderXRequestID

// RequestID reuses the client's X-Request-ID or generates a new one, echoes
// it in the response and stores it under "request_id".
func RequestID() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id := c.Request().Header.Get(HeaderXRequestID)
            if id == "" {
                id = uuid.New().String()
            }
            c.Set("request_id", id)
            c.Response().Header().Set(HeaderXRequestID, id)
            return next(c)
        }
    }
}

// RequestLogger logs one line per request. The level follows the status:
// 5xx at error, 4xx at warn, everything else at info.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }

            req := c.Request()
            status := c.Response().Status
            attrs := []slog.Attr{
                slog.String("method", req.Method),
                slog.String("uri", req.URL.Path),
                slog.Int("status", status),
                slog.Duration("latency", time.Since(start)),
                slog.String("remote_ip", c.RealIP()),
                slog.String("user", userID(c)),
            }
            if id, ok := c.Get("request_id").(string); ok {
                attrs = append(attrs, slog.String("request_id", id))
            }
            if len(req.URL.RawQuery) > 0 {
                attrs = append(attrs, slog.String("query", req.URL.RawQuery))
            }
            if err != nil {
                attrs = append(attrs, slog.String("error", err.Error()))
            }

            level := slog.LevelInfo
            if status >= 400 {
                level = slog.LevelWarn
            }
            if status >= 500 {
                level = slog.LevelError
            }
            logger.LogAttrs(req.Context(), level, "HTTP Request", attrs...)
            return nil
        }
    }
}
