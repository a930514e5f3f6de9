package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password, address, latitude, longitude, status, register_at, day`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (` + userColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, query,
		id,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Address,
		user.Latitude,
		user.Longitude,
		string(user.Status),
		user.RegisteredAt,
		int16(user.Weekday),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return err
	}

	user.ID = id
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) ListByWeekdays(ctx context.Context, days []domain.Weekday) ([]domain.UserSummary, error) {
	summaries := []domain.UserSummary{}
	if len(days) == 0 {
		return summaries, nil
	}

	codes := make([]int16, 0, len(days))
	for _, d := range days {
		codes = append(codes, int16(d))
	}

	const query = `SELECT name, email, day FROM users WHERE day = ANY($1)`
	rows, err := r.pool.Query(ctx, query, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s   domain.UserSummary
			day int16
		)
		if err := rows.Scan(&s.Name, &s.Email, &day); err != nil {
			return nil, err
		}
		s.Weekday = domain.Weekday(day)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// ToggleStatus flips every row in one statement.
func (r *userRepository) ToggleStatus(ctx context.Context) (int64, error) {
	const query = `
	UPDATE users
	SET status = CASE WHEN status = 'active' THEN 'inactive' ELSE 'active' END
	`
	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user   domain.User
		status string
		day    int16
	)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Address,
		&user.Latitude,
		&user.Longitude,
		&status,
		&user.RegisteredAt,
		&day,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	user.Status = domain.UserStatus(status)
	user.Weekday = domain.Weekday(day)
	return &user, nil
}

var (
	_ repository.UserRepository = (*userRepository)(nil)
	_ repository.Pinger         = (*userRepository)(nil)
	_ repository.Counter        = (*userRepository)(nil)
)
