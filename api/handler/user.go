package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/geouser/api/transport"
	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/pkg/geo"
	"github.com/fastygo/geouser/pkg/httpcontext"
	distanceUC "github.com/fastygo/geouser/usecase/distance"
	listingUC "github.com/fastygo/geouser/usecase/listing"
	statusUC "github.com/fastygo/geouser/usecase/status"
)

// UserHandler serves the routes behind the session gate.
type UserHandler struct {
	baseHandler
	status   *statusUC.UseCase
	distance *distanceUC.UseCase
	listing  *listingUC.UseCase
}

func NewUserHandler(
	status *statusUC.UseCase,
	distance *distanceUC.UseCase,
	listing *listingUC.UseCase,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, logger),
		status:      status,
		distance:    distance,
		listing:     listing,
	}
}

// @Summary Flip every account between active and inactive
// @Tags users
// @Router /api/toggle-status [put]
func (h *UserHandler) ToggleStatus(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	modified, err := h.status.ToggleAll(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "All users' status updated successfully", transport.ToggleResponse{
		ModifiedCount: modified,
	})
}

// @Summary Distance from the caller's registered position
// @Tags users
// @Router /api/get-distance [post]
func (h *UserHandler) Distance(ctx *fasthttp.RequestCtx) {
	user, ok := h.identity(ctx)
	if !ok {
		return
	}

	var req transport.DistanceRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, nil, err)
		return
	}

	lat, lon, err := destination(req)
	if err != nil {
		h.respondError(ctx, nil, err)
		return
	}

	res, err := h.distance.From(user, lat, lon)
	if err != nil {
		h.respondError(ctx, nil, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Distance calculated successfully", transport.DistanceResponse{
		Distance: res.Formatted,
	})
}

// @Summary Users grouped by registration weekday
// @Tags users
// @Router /api/user-listing [post]
func (h *UserHandler) Listing(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.ListingRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	days, err := req.Days()
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	grouped, err := h.listing.ByWeekdays(stdCtx, days)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "User listing retrieved successfully", grouped)
}

func destination(req transport.DistanceRequest) (float64, float64, error) {
	if !req.DestinationLatitude.Set || !req.DestinationLongitude.Set ||
		req.DestinationLatitude.Text == "" || req.DestinationLongitude.Text == "" {
		return 0, 0, domain.ErrMissingDestination
	}
	lat, err := geo.ParseCoordinate(req.DestinationLatitude.Text)
	if err != nil {
		return 0, 0, domain.ErrInvalidCoordinates
	}
	lon, err := geo.ParseCoordinate(req.DestinationLongitude.Text)
	if err != nil {
		return 0, 0, domain.ErrInvalidCoordinates
	}
	return lat, lon, nil
}
