// Package geo implements great-circle distance on a spherical Earth.
package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned for empty, non-numeric or non-finite input.
var ErrInvalidCoordinate = errors.New("geo: invalid coordinate")

// decimalPattern admits plain decimal notation with an optional exponent.
// Go literal forms such as "1_0" or "0x1p-2" do not match.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Haversine returns the distance in kilometers between two points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// rounding can push a marginally past 1 for near-antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Round2 rounds km to two decimal places.
func Round2(km float64) float64 {
	return math.Round(km*100) / 100
}

// FormatKm renders a distance the way the API reports it, e.g. "12.34 km".
func FormatKm(km float64) string {
	return fmt.Sprintf("%.2f km", km)
}

// ParseCoordinate parses a decimal-degree value from text.
func ParseCoordinate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if !decimalPattern.MatchString(raw) {
		return 0, ErrInvalidCoordinate
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidCoordinate
	}
	return v, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
