package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/geouser/api/transport"
	"github.com/fastygo/geouser/pkg/httpcontext"
	authUC "github.com/fastygo/geouser/usecase/auth"
)

// registerAtLayout renders timestamps with millisecond precision, e.g.
// 2024-03-03T23:30:00.000Z.
const registerAtLayout = "2006-01-02T15:04:05.000Z07:00"

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a user and issue a bearer token
// @Tags auth
// @Router /api/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.RegisterRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	reg, err := h.uc.Register(stdCtx, authUC.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Address:   req.Address,
		Latitude:  req.Latitude.Text,
		Longitude: req.Longitude.Text,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	u := reg.User
	h.respondSuccess(ctx, http.StatusCreated, "User created successfully", transport.RegistrationResponse{
		Name:       u.Name,
		Email:      u.Email,
		Address:    u.Address,
		Latitude:   u.Latitude,
		Longitude:  u.Longitude,
		Status:     string(u.Status),
		RegisterAt: u.RegisteredAt.UTC().Format(registerAtLayout),
		Token:      reg.Token,
	})
}
