package distance

import (
	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/pkg/geo"
)

// Result is the great-circle distance between the caller and a destination.
type Result struct {
	Km        float64
	Formatted string
}

type UseCase struct{}

func New() *UseCase {
	return &UseCase{}
}

// From measures from the stored coordinates of origin to (lat, lon).
// An origin whose stored coordinates do not parse is an internal fault.
func (uc *UseCase) From(origin *domain.User, lat, lon float64) (Result, error) {
	if origin == nil {
		return Result{}, domain.ErrNotAuthorized
	}

	originLat, err := geo.ParseCoordinate(origin.Latitude)
	if err != nil {
		return Result{}, domain.WrapError(domain.ErrCodeInternal, domain.ErrInternal.Message, err)
	}
	originLon, err := geo.ParseCoordinate(origin.Longitude)
	if err != nil {
		return Result{}, domain.WrapError(domain.ErrCodeInternal, domain.ErrInternal.Message, err)
	}

	km := geo.Haversine(originLat, originLon, lat, lon)
	return Result{Km: geo.Round2(km), Formatted: geo.FormatKm(km)}, nil
}
