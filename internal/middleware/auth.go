package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/geouser/api/transport"
	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/pkg/httpcontext"
	appLogger "github.com/fastygo/geouser/pkg/logger"
	"github.com/fastygo/geouser/pkg/metrics"
)

// Authenticator resolves an Authorization header to a live account.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*domain.User, error)
}

// SessionGate admits requests whose bearer token names an active account and
// stores that account on the request for the wrapped handler.
func SessionGate(auth Authenticator, adapter *httpcontext.Adapter, logger *zap.Logger, m *metrics.Metrics) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			stdCtx, cancel := adapter.Attach(ctx)
			user, err := auth.Authenticate(stdCtx, string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
			cancel()

			if err != nil {
				reason := rejectionReason(err)
				m.RecordGateRejection(reason)
				if reason == "internal" {
					appLogger.WithRequestID(stdCtx, logger).Error("session gate lookup failed",
						zap.String("remote_addr", httpcontext.RemoteAddr(stdCtx)),
						zap.String("user_agent", httpcontext.UserAgent(stdCtx)),
						zap.Error(err),
					)
				} else {
					appLogger.WithRequestID(stdCtx, logger).Debug("session gate rejected request", zap.String("reason", reason))
				}
				writeError(ctx, err)
				return
			}

			httpcontext.SetIdentity(ctx, user)
			next(ctx)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoToken):
		return "no_token"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrNotAuthorized):
		return "not_authorized"
	default:
		return "internal"
	}
}

func writeError(ctx *fasthttp.RequestCtx, err error) {
	status, env := transport.NewError(err)
	writeJSON(ctx, status, env)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, env transport.Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"status_code":500,"message":"Internal Server Error","data":null}`)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
