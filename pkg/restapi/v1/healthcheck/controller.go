/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthcheck

import (
	"context"
	"net/http"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/labstack/echo/v4"

	"github.com/trustbloc/vp-verifier/pkg/observability/health/checks"
	"github.com/trustbloc/vp-verifier/pkg/observability/health/healthutil"
)

const defaultTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type runner interface {
	Running() error
}

// Config configures the health check.
type Config struct {
	// Redis is checked when sessions are kept in redis.
	Redis pinger
	// EventBus carries session notifications to the in-process subscribers.
	EventBus runner
	Version  string
	Timeout  time.Duration
}

// Controller for health check API.
type Controller struct {
	handler http.Handler
}

// NewController returns a controller that runs the configured checks on every request.
func NewController(config *Config) *Controller {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	times := healthutil.NewResponseTimes()

	opts := []health.CheckerOption{
		health.WithTimeout(timeout),
		health.WithInterceptors(healthutil.ResponseTimeInterceptor(times)),
	}

	for _, check := range Checks(config) {
		opts = append(opts, health.WithCheck(check))
	}

	return &Controller{
		handler: health.NewHandler(health.NewChecker(opts...),
			health.WithResultWriter(healthutil.NewJSONResultWriter(times, config.Version))),
	}
}

// Checks returns the checks of the configured dependencies.
func Checks(config *Config) []health.Check {
	var result []health.Check

	if config.Redis != nil {
		result = append(result, health.Check{
			Name:               "redis",
			Check:              checks.Ping("redis", config.Redis),
			MaxTimeInError:     1,
			MaxContiguousFails: 1,
		})
	}

	if config.EventBus != nil {
		result = append(result, health.Check{
			Name:  "event-bus",
			Check: checks.Running(config.EventBus),
		})
	}

	return result
}

// GetHealthcheck returns the health check status.
// GET /healthcheck.
func (c *Controller) GetHealthcheck(ctx echo.Context) error {
	c.handler.ServeHTTP(ctx.Response(), ctx.Request())

	return nil
}

// RegisterHandlers registers the health check route.
func RegisterHandlers(router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}, c *Controller) {
	router.GET("/healthcheck", c.GetHealthcheck)
}
