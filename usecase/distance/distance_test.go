package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/geouser/domain"
)

func TestFrom(t *testing.T) {
	uc := New()

	origin := &domain.User{Latitude: "0", Longitude: "0"}
	res, err := uc.From(origin, 0, 90)
	require.NoError(t, err)
	assert.Equal(t, "10007.54 km", res.Formatted)
	assert.InDelta(t, 10007.54, res.Km, 1e-9)

	res, err = uc.From(origin, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "0.00 km", res.Formatted)
}

func TestFrom_StoredCoordinatesAsText(t *testing.T) {
	origin := &domain.User{Latitude: " 51.5074 ", Longitude: "-0.1278"}

	res, err := New().From(origin, 48.8566, 2.3522)
	require.NoError(t, err)
	assert.InDelta(t, 343.5, res.Km, 1.0)
}

func TestFrom_Errors(t *testing.T) {
	_, err := New().From(nil, 0, 0)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = New().From(&domain.User{Latitude: "x", Longitude: "0"}, 0, 0)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
}
