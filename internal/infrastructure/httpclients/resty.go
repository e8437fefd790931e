package httpclients

import (
	"context"
	"time"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/logger"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/metrics"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/sanitize"

	"resty.dev/v3"
)

type HTTPClientStartsAt struct{}

// NewClient returns a resty client that logs each exchange at debug level and
// records provider call metrics under clientName.
func NewClient(clientName string, timeout time.Duration) *resty.Client {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		ctx := context.WithValue(r.Context(), HTTPClientStartsAt{}, time.Now())
		r.SetContext(ctx)
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		log := logger.GetLogger()
		ctx := r.Request.Context()
		startTime, _ := ctx.Value(HTTPClientStartsAt{}).(time.Time)
		latency := time.Since(startTime)

		status := "error"
		if !r.IsError() {
			status = "success"
		}
		metrics.RecordProviderCall(clientName, status, latency.Seconds())

		event := log.Debug().
			Str("request_id", platformerrors.RequestIDFromContext(ctx)).
			Str("client", clientName).
			Int("status", r.StatusCode()).
			Dur("latency", latency)
		if raw := r.Request.RawRequest; raw != nil {
			event = event.
				Str("method", raw.Method).
				Str("path", raw.URL.Path).
				Interface("req_headers", sanitize.MaskHeaders(raw.Header))
		}
		event.Msg("HTTP client request")
		return nil
	})
	return client
}
