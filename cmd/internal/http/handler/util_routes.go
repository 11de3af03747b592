package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type DefaultUtilRoute struct {
	DB Pinger
}

func NewUtilRoute(db Pinger) *DefaultUtilRoute {
	return &DefaultUtilRoute{DB: db}
}

// Health is a liveness probe that pings the database.
func (u *DefaultUtilRoute) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := u.DB.Ping(ctx); err != nil {
		log.Errorf("health check failed: %v", err)
		return c.String(http.StatusServiceUnavailable, "UNAVAILABLE")
	}
	return c.String(http.StatusOK, "OK")
}
