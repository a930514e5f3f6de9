package monitor

import "time"

type Status struct {
	Driver       string    `json:"driver"`
	Store        bool      `json:"store"`
	RedisEnabled bool      `json:"redis_enabled"`
	Redis        bool      `json:"redis"`
	Users        *int64    `json:"users,omitempty"`
	LastCheck    time.Time `json:"last_check"`
}

// Healthy is true when the store is up and Redis, if configured, answers too.
func (s Status) Healthy() bool {
	return s.Store && (!s.RedisEnabled || s.Redis)
}
