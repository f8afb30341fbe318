package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// PingFunc reports whether a backing service is reachable.
type PingFunc func(ctx context.Context) error

// HealthHandler serves the liveness and dependency report.
type HealthHandler struct {
	health *health.Health
}

// NewHealthHandler builds a health report over MySQL and Redis. The cache is
// fail-safe, so an unreachable Redis degrades the report without failing it.
func NewHealthHandler(version string, mysqlPing, redisPing PingFunc) (*HealthHandler, error) {
	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "learnhub",
			Version: version,
		}),
		health.WithChecks(
			health.Config{
				Name:    "mysql",
				Timeout: healthCheckTimeout,
				Check:   health.CheckFunc(mysqlPing),
			},
			health.Config{
				Name:      "redis",
				Timeout:   healthCheckTimeout,
				SkipOnErr: true,
				Check:     health.CheckFunc(redisPing),
			},
		),
	)
	if err != nil {
		return nil, err
	}
	return &HealthHandler{health: h}, nil
}

// Check godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /healthz [get]
func (h *HealthHandler) Check(c echo.Context) error {
	result := h.health.Measure(c.Request().Context())
	if result.Status == health.StatusUnavailable {
		return c.JSON(http.StatusServiceUnavailable, result)
	}
	return c.JSON(http.StatusOK, result)
}
