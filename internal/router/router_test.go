package router

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/geouser/api/handler"
	"github.com/fastygo/geouser/internal/config"
	"github.com/fastygo/geouser/internal/infrastructure/boltdb"
	"github.com/fastygo/geouser/internal/infrastructure/monitor"
	"github.com/fastygo/geouser/internal/middleware"
	"github.com/fastygo/geouser/pkg/httpcontext"
	"github.com/fastygo/geouser/pkg/metrics"
	"github.com/fastygo/geouser/pkg/password"
	"github.com/fastygo/geouser/pkg/token"
	"github.com/fastygo/geouser/repository"
	boltRepo "github.com/fastygo/geouser/repository/bolt"
	authUC "github.com/fastygo/geouser/usecase/auth"
	distanceUC "github.com/fastygo/geouser/usecase/distance"
	listingUC "github.com/fastygo/geouser/usecase/listing"
	statusUC "github.com/fastygo/geouser/usecase/status"
)

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

type app struct {
	handler fasthttp.RequestHandler
	users   repository.UserRepository
	monitor *monitor.Monitor
}

func newApp(t *testing.T) *app {
	t.Helper()

	db, err := boltdb.Open(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := boltRepo.NewUserRepository(db)
	codec, err := token.New("router-secret", time.Hour)
	require.NoError(t, err)

	m := metrics.New("test")
	adapter := httpcontext.NewAdapter(time.Second)
	mon := monitor.New(users.(repository.Pinger), config.DriverBolt, nil, time.Minute, nil)
	mon.Refresh(context.Background())

	auth := authUC.New(users, codec, password.NewBcrypt(4), nil, authUC.WithMetrics(m))
	handlers := Handlers{
		Auth: apiHandler.NewAuthHandler(auth, adapter, nil),
		User: apiHandler.NewUserHandler(
			statusUC.New(users, nil, m),
			distanceUC.New(),
			listingUC.New(users, nil),
			adapter, nil,
		),
		Health:  apiHandler.NewHealthHandler(mon, adapter, nil),
		Metrics: m.Handler(),
	}
	mw := Middlewares{Gate: middleware.SessionGate(auth, adapter, nil, m)}

	r := New(handlers, mw, nil)
	cors := middleware.CORS(config.CORSConfig{
		Origin:  "*",
		Methods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		Headers: "Content-Type, Authorization",
	})
	return &app{
		handler: middleware.AccessLog(nil, m)(cors(r.Handler)),
		users:   users,
		monitor: mon,
	}
}

type response struct {
	status int
	header *fasthttp.ResponseHeader
	body   map[string]any
	raw    string
}

func (a *app) do(t *testing.T, method, path, token, body string) response {
	t.Helper()

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}

	a.handler(&ctx)

	res := response{status: ctx.Response.StatusCode(), raw: string(ctx.Response.Body())}
	res.header = &fasthttp.ResponseHeader{}
	ctx.Response.Header.CopyTo(res.header)
	if strings.HasPrefix(string(ctx.Response.Header.ContentType()), "application/json") {
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &res.body), res.raw)
	}
	return res
}

func (a *app) register(t *testing.T, email string, lat, lon any) string {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"name":      "User " + email,
		"email":     email,
		"password":  "pw",
		"address":   "Somewhere 1",
		"latitude":  lat,
		"longitude": lon,
	})
	require.NoError(t, err)

	res := a.do(t, fasthttp.MethodPost, "/api/register", "", string(payload))
	require.Equal(t, fasthttp.StatusCreated, res.status, res.raw)
	data := res.body["data"].(map[string]any)
	return data["token"].(string)
}

func TestRegister(t *testing.T) {
	a := newApp(t)

	res := a.do(t, fasthttp.MethodPost, "/api/register", "",
		`{"name":"Ada","email":"ada@example.com","password":"pw","address":"London","latitude":51.5074,"longitude":"-0.1278"}`)
	require.Equal(t, fasthttp.StatusCreated, res.status, res.raw)
	assert.EqualValues(t, 201, res.body["status_code"])
	assert.Equal(t, "User created successfully", res.body["message"])

	data := res.body["data"].(map[string]any)
	assert.Equal(t, "Ada", data["name"])
	assert.Equal(t, "51.5074", data["latitude"])
	assert.Equal(t, "-0.1278", data["longitude"])
	assert.Equal(t, "active", data["status"])
	assert.NotEmpty(t, data["register_at"])
	assert.NotEmpty(t, data["token"])
	assert.NotContains(t, res.raw, "password")

	dup := a.do(t, fasthttp.MethodPost, "/api/register", "",
		`{"name":"Eve","email":"ada@example.com","password":"pw","address":"x","latitude":1,"longitude":2}`)
	assert.Equal(t, fasthttp.StatusBadRequest, dup.status)
	assert.Equal(t, "Email is already registered", dup.body["message"])
	assert.Nil(t, dup.body["data"])
}

func TestRegister_ValidationMessages(t *testing.T) {
	a := newApp(t)

	cases := []struct{ body, message string }{
		{`{"name":"A","email":"a@example.com"}`, "All fields are required"},
		{`{"name":"A","email":"not-an-email","password":"p","address":"x","latitude":1,"longitude":2}`, "Invalid email format"},
		{`{"name":"A","email":"a@example.com","password":"p","address":"x","latitude":"abc","longitude":2}`, "Latitude and Longitude must be valid numbers"},
		{`{"name":"A","email":"a@example.com","password":"p","address":"x","latitude":"0x1p-2","longitude":2}`, "Latitude and Longitude must be valid numbers"},
		{`{"name":"A","email":"a@example.com","password":"p","address":"x","latitude":1,"longitude":"1_0"}`, "Latitude and Longitude must be valid numbers"},
		{`not json`, "invalid payload"},
	}
	for _, tc := range cases {
		res := a.do(t, fasthttp.MethodPost, "/api/register", "", tc.body)
		assert.Equal(t, fasthttp.StatusBadRequest, res.status, tc.body)
		assert.Equal(t, tc.message, res.body["message"], tc.body)
	}
}

func TestGate(t *testing.T) {
	a := newApp(t)

	res := a.do(t, fasthttp.MethodPut, "/api/toggle-status", "", "")
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)
	assert.Equal(t, "Access denied. No token provided.", res.body["message"])

	res = a.do(t, fasthttp.MethodPut, "/api/toggle-status", "garbage", "")
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)
	assert.Equal(t, "Invalid or expired token", res.body["message"])
}

func TestDistance(t *testing.T) {
	a := newApp(t)
	tok := a.register(t, "origin@example.com", 0, 0)

	res := a.do(t, fasthttp.MethodPost, "/api/get-distance", tok, `{"destination_latitude":0,"destination_longitude":90}`)
	require.Equal(t, fasthttp.StatusOK, res.status, res.raw)
	assert.Equal(t, "Distance calculated successfully", res.body["message"])
	assert.Equal(t, "10007.54 km", res.body["data"].(map[string]any)["distance"])

	res = a.do(t, fasthttp.MethodPost, "/api/get-distance", tok, `{"destination_latitude":"0","destination_longitude":"0"}`)
	require.Equal(t, fasthttp.StatusOK, res.status, res.raw)
	assert.Equal(t, "0.00 km", res.body["data"].(map[string]any)["distance"])

	res = a.do(t, fasthttp.MethodPost, "/api/get-distance", tok, `{"destination_latitude":10}`)
	assert.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "Destination latitude and longitude are required", res.body["message"])

	res = a.do(t, fasthttp.MethodPost, "/api/get-distance", tok, `{"destination_latitude":"north","destination_longitude":1}`)
	assert.Equal(t, fasthttp.StatusBadRequest, res.status)
}

func TestListing(t *testing.T) {
	a := newApp(t)
	tok := a.register(t, "lister@example.com", 1, 1)

	res := a.do(t, fasthttp.MethodPost, "/api/user-listing", tok, `{"week_number":[0,1,2,3,4,5,6,9]}`)
	require.Equal(t, fasthttp.StatusOK, res.status, res.raw)
	data := res.body["data"].(map[string]any)
	assert.Len(t, data, 7)

	total := 0
	for _, v := range data {
		total += len(v.([]any))
	}
	assert.Equal(t, 1, total)
	assert.NotContains(t, res.raw, "password")

	res = a.do(t, fasthttp.MethodPost, "/api/user-listing", tok, `{"week_number":[8,9]}`)
	assert.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid days provided. Use numbers between 0 (Sunday) to 6 (Saturday).", res.body["message"])

	res = a.do(t, fasthttp.MethodPost, "/api/user-listing", tok, `{"week_number":"monday"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "week_number array is required", res.body["message"])
}

func TestToggleStatus_LocksOutCaller(t *testing.T) {
	a := newApp(t)
	tok := a.register(t, "a@example.com", 1, 1)
	a.register(t, "b@example.com", 2, 2)

	res := a.do(t, fasthttp.MethodPut, "/api/toggle-status", tok, "")
	require.Equal(t, fasthttp.StatusOK, res.status, res.raw)
	assert.EqualValues(t, 2, res.body["data"].(map[string]any)["modifiedCount"])

	res = a.do(t, fasthttp.MethodPut, "/api/toggle-status", tok, "")
	assert.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "User is not authorized", res.body["message"])

	_, err := a.users.ToggleStatus(context.Background())
	require.NoError(t, err)

	res = a.do(t, fasthttp.MethodPut, "/api/toggle-status", tok, "")
	assert.Equal(t, fasthttp.StatusOK, res.status)
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	a := newApp(t)

	a.register(t, "health@example.com", 1, 2)
	a.monitor.Refresh(context.Background())

	res := a.do(t, fasthttp.MethodGet, "/health", "", "")
	assert.Equal(t, fasthttp.StatusOK, res.status)
	data := res.body["data"].(map[string]any)
	assert.Equal(t, "bolt", data["driver"])
	assert.EqualValues(t, 1, data["users"])

	a.do(t, fasthttp.MethodPut, "/api/toggle-status", "", "")
	res = a.do(t, fasthttp.MethodGet, "/metrics", "", "")
	assert.Equal(t, fasthttp.StatusOK, res.status)
	assert.Contains(t, res.raw, `test_gate_rejections_total{reason="no_token"} 1`)

	res = a.do(t, fasthttp.MethodGet, "/nope", "", "")
	assert.Equal(t, fasthttp.StatusNotFound, res.status)
	assert.Equal(t, "Route not found", res.body["message"])
}

func TestCORS(t *testing.T) {
	a := newApp(t)

	res := a.do(t, fasthttp.MethodOptions, "/api/register", "", "")
	assert.Equal(t, fasthttp.StatusNoContent, res.status)
	assert.Empty(t, res.raw)
	assert.Equal(t, "*", string(res.header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", string(res.header.Peek("Access-Control-Allow-Methods")))
	assert.Equal(t, "Content-Type, Authorization", string(res.header.Peek("Access-Control-Allow-Headers")))

	res = a.do(t, fasthttp.MethodOptions, "/api/toggle-status", "", "")
	assert.Equal(t, fasthttp.StatusNoContent, res.status, "preflight skips the session gate")

	res = a.do(t, fasthttp.MethodGet, "/health", "", "")
	assert.Equal(t, fasthttp.StatusOK, res.status)
	assert.Equal(t, "*", string(res.header.Peek("Access-Control-Allow-Origin")))

	res = a.do(t, fasthttp.MethodPut, "/api/toggle-status", "", "")
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)
	assert.Equal(t, "*", string(res.header.Peek("Access-Control-Allow-Origin")), "rejections carry CORS headers")
}

func TestPanicHandler(t *testing.T) {
	r := New(Handlers{
		Auth:   &apiHandler.AuthHandler{},
		User:   &apiHandler.UserHandler{},
		Health: apiHandler.NewHealthHandler(staticStatus{}, nil, nil),
	}, Middlewares{}, nil)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodPut)
	ctx.Request.SetRequestURI("/api/toggle-status")
	r.Handler(&ctx)

	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status_code":500,"message":"Internal Server Error","data":null}`, string(ctx.Response.Body()))
}
