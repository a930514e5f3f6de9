package router

import (
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/geouser/api/handler"
	"github.com/fastygo/geouser/api/transport"
	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/pkg/httpcontext"
)

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	User   *apiHandler.UserHandler
	Health *apiHandler.HealthHandler

	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
}

type Middlewares struct {
	Gate      Middleware
	RateLimit Middleware
}

func New(handlers Handlers, mw Middlewares, logger *zap.Logger) *router.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	gate := orIdentity(mw.Gate)
	limit := orIdentity(mw.RateLimit)

	r := router.New()
	r.PanicHandler = panicHandler(logger)
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		writeEnvelope(ctx, http.StatusNotFound, transport.Envelope{StatusCode: http.StatusNotFound, Message: "Route not found"})
	}

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(handlers.Metrics))
	}

	r.POST("/api/register", limit(handlers.Auth.Register))

	// Protected routes
	r.PUT("/api/toggle-status", gate(handlers.User.ToggleStatus))
	r.POST("/api/get-distance", gate(handlers.User.Distance))
	r.POST("/api/user-listing", gate(handlers.User.Listing))

	return r
}

func orIdentity(m Middleware) Middleware {
	if m == nil {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}
	return m
}

func panicHandler(logger *zap.Logger) func(*fasthttp.RequestCtx, interface{}) {
	return func(ctx *fasthttp.RequestCtx, rcv interface{}) {
		logger.Error("handler panic",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.String("path", string(ctx.Path())),
			zap.Any("panic", rcv),
			zap.Stack("stack"),
		)
		_, env := transport.NewError(domain.ErrInternal)
		writeEnvelope(ctx, http.StatusInternalServerError, env)
	}
}

func writeEnvelope(ctx *fasthttp.RequestCtx, status int, env transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(env.String())
}
