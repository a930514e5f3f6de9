package middleware

import (
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/geouser/pkg/httpcontext"
	"github.com/fastygo/geouser/pkg/metrics"
)

// AccessLog logs one line per request and feeds the HTTP metrics. It also
// makes sure every response carries an X-Request-ID.
func AccessLog(logger *zap.Logger, m *metrics.Metrics) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			reqID := httpcontext.RequestID(ctx)
			m.RequestStarted()
			defer m.RequestFinished()

			next(ctx)

			took := time.Since(start)
			method := string(ctx.Method())
			path := string(ctx.Path())
			status := ctx.Response.StatusCode()

			m.ObserveRequest(method, routeLabel(ctx, path), strconv.Itoa(status), took)

			fields := []zap.Field{
				zap.String("request_id", reqID),
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", status),
				zap.Duration("took", took),
			}
			if status >= fasthttp.StatusInternalServerError {
				logger.Warn("request completed", fields...)
				return
			}
			logger.Info("request completed", fields...)
		}
	}
}

// routeLabel keeps the metric path label bounded: unknown paths share one label.
func routeLabel(ctx *fasthttp.RequestCtx, path string) string {
	if ctx.Response.StatusCode() == fasthttp.StatusNotFound || ctx.Response.StatusCode() == fasthttp.StatusMethodNotAllowed {
		return "unmatched"
	}
	return path
}
