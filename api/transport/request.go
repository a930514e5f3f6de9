package transport

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/fastygo/geouser/domain"
)

// Coordinate accepts a JSON number or a numeric string and keeps its text.
// Set is false when the field was absent or null.
type Coordinate struct {
	Text string
	Set  bool
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Coordinate{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Coordinate{Text: strings.TrimSpace(s), Set: true}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Coordinate{Text: n.String(), Set: true}
	return nil
}

type RegisterRequest struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Address   string     `json:"address"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

type DistanceRequest struct {
	DestinationLatitude  Coordinate `json:"destination_latitude"`
	DestinationLongitude Coordinate `json:"destination_longitude"`
}

type ListingRequest struct {
	WeekNumber json.RawMessage `json:"week_number"`
}

// Days returns the integral numbers of week_number. Strings, fractions and
// other non-numbers are skipped; range checks happen in the domain.
func (r ListingRequest) Days() ([]int, error) {
	var raw []json.RawMessage
	if len(r.WeekNumber) == 0 || r.WeekNumber[0] != '[' || json.Unmarshal(r.WeekNumber, &raw) != nil {
		return nil, domain.ErrWeekdaysRequired
	}

	days := make([]int, 0, len(raw))
	for _, item := range raw {
		if bytes.Equal(item, []byte("null")) {
			continue
		}
		var f float64
		if err := json.Unmarshal(item, &f); err != nil {
			continue
		}
		if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			continue
		}
		days = append(days, int(f))
	}
	return days, nil
}

// RegistrationResponse is the data block returned by a successful register.
type RegistrationResponse struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	Status     string `json:"status"`
	RegisterAt string `json:"register_at"`
	Token      string `json:"token"`
}

type ToggleResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

type DistanceResponse struct {
	Distance string `json:"distance"`
}
