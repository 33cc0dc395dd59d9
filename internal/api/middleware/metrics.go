package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/sherpa-go/internal/observability/metrics"
)

// NewMetrics records the method, route, status and latency of each request.
// Requests that match no route are recorded under "unmatched" to keep label
// cardinality bounded.
func NewMetrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				switch {
				case errors.As(err, &he):
					status = he.Code
				case !c.Response().Committed:
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RecordRequest(c.Request().Method, route, status, time.Since(start).Seconds())
			return err
		}
	}
}
