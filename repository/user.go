package repository

import (
	"context"

	"github.com/fastygo/geouser/domain"
)

// UserRepository is the credential store. Implementations must enforce email
// uniqueness on write and report domain.ErrEmailTaken for duplicates.
type UserRepository interface {
	// Create assigns the ID and persists the user.
	Create(ctx context.Context, user *domain.User) error
	// GetByID returns domain.ErrUserNotFound for unknown or malformed ids.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ListByWeekdays returns name/email projections of users registered on any of days.
	ListByWeekdays(ctx context.Context, days []domain.Weekday) ([]domain.UserSummary, error)
	// ToggleStatus flips every account's status in one store operation and
	// returns the number of modified accounts.
	ToggleStatus(ctx context.Context) (int64, error)
}

// Pinger is implemented by stores that can report liveness to the monitor.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter reports how many accounts the store holds.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}
