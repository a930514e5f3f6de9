package middleware

import (
	"github.com/valyala/fasthttp"

	"github.com/fastygo/geouser/internal/config"
)

// CORS adds the Access-Control-* headers to every response and answers
// preflight OPTIONS requests without reaching the router.
func CORS(cfg config.CORSConfig) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	origin := cfg.Origin
	if origin == "" {
		origin = "*"
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
			if cfg.Methods != "" {
				ctx.Response.Header.Set("Access-Control-Allow-Methods", cfg.Methods)
			}
			if cfg.Headers != "" {
				ctx.Response.Header.Set("Access-Control-Allow-Headers", cfg.Headers)
			}
			if origin != "*" {
				ctx.Response.Header.Add("Vary", "Origin")
			}

			if ctx.IsOptions() {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}
