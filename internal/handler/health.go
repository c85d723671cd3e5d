package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewHealth returns the /healthz handler. It pings the database, and Redis
// when one is configured. A failing database answers 503; a failing Redis
// only degrades the report since the API runs without it.
func NewHealth(db Pinger, rdb *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := echo.Map{"status": "ok", "db": "ok", "redis": "disabled"}
		if err := db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			report["status"], report["db"] = "down", err.Error()
		}
		if rdb != nil {
			report["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				report["redis"] = err.Error()
				if status == http.StatusOK {
					report["status"] = "degraded"
				}
			}
		}
		return c.JSON(status, report)
	}
}
