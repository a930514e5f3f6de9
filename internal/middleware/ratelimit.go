package middleware

import (
	"context"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/pkg/httpcontext"
	appLogger "github.com/fastygo/geouser/pkg/logger"
	"github.com/fastygo/geouser/pkg/metrics"
)

// Limiter decides whether one more hit for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit refuses requests over the limiter's budget per client IP with
// 429. Limiter errors let the request through and are logged.
func RateLimit(limiter Limiter, adapter *httpcontext.Adapter, logger *zap.Logger, m *metrics.Metrics) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		if limiter == nil {
			return next
		}
		return func(ctx *fasthttp.RequestCtx) {
			stdCtx, cancel := adapter.Attach(ctx)
			ok, err := limiter.Allow(stdCtx, ctx.RemoteIP().String())
			cancel()

			switch {
			case err != nil:
				appLogger.WithRequestID(stdCtx, logger).Warn("rate limiter unavailable", zap.Error(err))
			case !ok:
				m.RecordRateLimited()
				writeError(ctx, domain.ErrTooManyRequests)
				return
			}
			next(ctx)
		}
	}
}
