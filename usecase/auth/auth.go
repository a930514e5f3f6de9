package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/pkg/geo"
	appLogger "github.com/fastygo/geouser/pkg/logger"
	"github.com/fastygo/geouser/pkg/metrics"
	"github.com/fastygo/geouser/pkg/password"
	"github.com/fastygo/geouser/pkg/token"
	"github.com/fastygo/geouser/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput carries the registration fields as received. Latitude and
// Longitude are the textual form of the client's numbers.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Address   string
	Latitude  string
	Longitude string
}

// Registration is the created account together with its bearer token.
type Registration struct {
	User  *domain.User
	Token string
}

type UseCase struct {
	users   repository.UserRepository
	codec   *token.Codec
	hasher  password.Hasher
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type Option func(*UseCase)

// WithClock replaces time.Now for registration timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// WithLocation sets the zone the registration weekday is derived in.
func WithLocation(loc *time.Location) Option {
	return func(uc *UseCase) {
		if loc != nil {
			uc.loc = loc
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCase) {
		uc.metrics = m
	}
}

func New(users repository.UserRepository, codec *token.Codec, hasher password.Hasher, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		users:  users,
		codec:  codec,
		hasher: hasher,
		loc:    time.UTC,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Register validates the input, stores a new active account and issues its
// token. Nothing is written and no token is issued when validation fails.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*Registration, error) {
	in = in.trimmed()

	if err := in.validate(); err != nil {
		uc.metrics.RecordRegistration("invalid")
		return nil, err
	}

	if _, err := uc.users.GetByEmail(ctx, in.Email); err == nil {
		uc.metrics.RecordRegistration("conflict")
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Status:       domain.StatusActive,
		RegisteredAt: now,
		Weekday:      domain.WeekdayOf(now, uc.loc),
	}

	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			uc.metrics.RecordRegistration("conflict")
		}
		return nil, err
	}

	signed, err := uc.codec.Issue(claimsFor(user))
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordRegistration("created")
	appLogger.WithRequestID(ctx, uc.logger).Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("day", user.Weekday.Name()),
	)
	return &Registration{User: user, Token: signed}, nil
}

// Authenticate resolves an Authorization header value to the live account.
// The token only names the account; its status is re-read from the store.
func (uc *UseCase) Authenticate(ctx context.Context, header string) (*domain.User, error) {
	raw := bearerToken(header)
	if raw == "" {
		return nil, domain.ErrNoToken
	}

	claims, err := uc.codec.Verify(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidToken.Code, domain.ErrInvalidToken.Message, err)
	}

	user, err := uc.users.GetByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil, domain.ErrNotAuthorized
	case err != nil:
		return nil, err
	case !user.IsActive():
		return nil, domain.ErrNotAuthorized
	}
	return user, nil
}

// bearerToken strips an optional, case-insensitive "Bearer" scheme.
func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	const scheme = "bearer"
	if len(raw) >= len(scheme) && strings.EqualFold(raw[:len(scheme)], scheme) {
		rest := raw[len(scheme):]
		if rest == "" {
			return ""
		}
		if rest[0] == ' ' || rest[0] == '\t' {
			return strings.TrimSpace(rest)
		}
	}
	return raw
}

func claimsFor(u *domain.User) token.Claims {
	return token.Claims{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		Day:       int(u.Weekday),
	}
}

func (in RegisterInput) trimmed() RegisterInput {
	return RegisterInput{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Password:  in.Password,
		Address:   strings.TrimSpace(in.Address),
		Latitude:  strings.TrimSpace(in.Latitude),
		Longitude: strings.TrimSpace(in.Longitude),
	}
}

func (in RegisterInput) validate() error {
	if in.Name == "" || in.Email == "" || in.Password == "" ||
		in.Address == "" || in.Latitude == "" || in.Longitude == "" {
		return domain.ErrMissingFields
	}
	if !emailPattern.MatchString(in.Email) {
		return domain.ErrInvalidEmail
	}
	if _, err := geo.ParseCoordinate(in.Latitude); err != nil {
		return domain.ErrInvalidCoordinates
	}
	if _, err := geo.ParseCoordinate(in.Longitude); err != nil {
		return domain.ErrInvalidCoordinates
	}
	return nil
}
