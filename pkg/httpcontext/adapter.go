package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/geouser/domain"
	appLogger "github.com/fastygo/geouser/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

// identityKey is the fasthttp user value holding the gated *domain.User.
const identityKey = "geouser.identity"

const requestIDValue = "geouser.request_id"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	stdCtx = appLogger.ContextWithRequestID(stdCtx, RequestID(ctx))

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// RemoteAddr returns the client address recorded by Attach.
func RemoteAddr(ctx context.Context) string {
	v, _ := ctx.Value(KeyRemoteAddr).(string)
	return v
}

// UserAgent returns the client User-Agent recorded by Attach.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(KeyUserAgent).(string)
	return v
}

// RequestID returns the request's ID, taking X-Request-ID from the client when
// present. The ID is generated once, cached on ctx and echoed in the response.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if reqID, ok := ctx.UserValue(requestIDValue).(string); ok && reqID != "" {
		return reqID
	}

	reqID := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID")))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx.SetUserValue(requestIDValue, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)
	return reqID
}

// SetIdentity stores the authenticated account on the request.
func SetIdentity(ctx *fasthttp.RequestCtx, user *domain.User) {
	ctx.SetUserValue(identityKey, user)
}

// Identity returns the account attached by the session gate.
func Identity(ctx *fasthttp.RequestCtx) (*domain.User, bool) {
	user, ok := ctx.UserValue(identityKey).(*domain.User)
	return user, ok && user != nil
}
