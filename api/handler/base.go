package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/geouser/api/transport"
	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/pkg/httpcontext"
	appLogger "github.com/fastygo/geouser/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return h.adapter.Attach(ctx)
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, err)
	}
	return nil
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"status_code":500,"message":"Internal Server Error","data":null}`)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, message string, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(status, message, data))
}

// respondError writes the error envelope. Server faults are logged with
// their cause; client errors are not.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	status, env := transport.NewError(err)
	if status >= http.StatusInternalServerError {
		if stdCtx == nil {
			stdCtx = appLogger.ContextWithRequestID(context.Background(), httpcontext.RequestID(ctx))
		}
		appLogger.WithRequestID(stdCtx, h.logger).Error("request failed",
			zap.String("path", string(ctx.Path())),
			zap.String("remote_addr", httpcontext.RemoteAddr(stdCtx)),
			zap.String("user_agent", httpcontext.UserAgent(stdCtx)),
			zap.Error(err),
		)
	}
	h.respondJSON(ctx, status, env)
}

// identity returns the account stored by the session gate. Reaching a gated
// handler without one is a wiring fault.
func (h baseHandler) identity(ctx *fasthttp.RequestCtx) (*domain.User, bool) {
	user, ok := httpcontext.Identity(ctx)
	if !ok {
		h.respondError(ctx, nil, domain.WrapError(domain.ErrCodeInternal, "missing identity", nil))
	}
	return user, ok
}
