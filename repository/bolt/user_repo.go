package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/internal/infrastructure/boltdb"
	"github.com/fastygo/geouser/repository"
)

type userRecord struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Password     string    `json:"password"`
	Address      string    `json:"address"`
	Latitude     string    `json:"latitude"`
	Longitude    string    `json:"longitude"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"register_at"`
	Day          int       `json:"day"`
}

type userRepository struct {
	db *bolt.DB
}

// NewUserRepository returns a UserRepository on an embedded BoltDB file.
// Every write runs in a single bolt transaction.
func NewUserRepository(db *bolt.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rec := toRecord(user)
	rec.ID = uuid.NewString()

	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		emails := tx.Bucket(boltdb.BucketByEmail)
		if emails.Get([]byte(rec.Email)) != nil {
			return domain.ErrEmailTaken
		}
		if err := tx.Bucket(boltdb.BucketUsers).Put([]byte(rec.ID), payload); err != nil {
			return err
		}
		if err := emails.Put([]byte(rec.Email), []byte(rec.ID)); err != nil {
			return err
		}
		return tx.Bucket(boltdb.BucketByDay).Put(dayKey(rec.Day, rec.ID), []byte{})
	})
	if err != nil {
		return err
	}

	user.ID = rec.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrUserNotFound
	}

	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		user, err = getUser(tx, []byte(id))
		return err
	})
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(boltdb.BucketByEmail).Get([]byte(email))
		if id == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = getUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) ListByWeekdays(ctx context.Context, days []domain.Weekday) ([]domain.UserSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summaries := []domain.UserSummary{}
	err := r.db.View(func(tx *bolt.Tx) error {
		users := tx.Bucket(boltdb.BucketUsers)
		c := tx.Bucket(boltdb.BucketByDay).Cursor()
		for _, day := range days {
			prefix := dayPrefix(int(day))
			for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
				raw := users.Get(k[len(prefix):])
				if raw == nil {
					continue
				}
				var rec userRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					return err
				}
				summaries = append(summaries, domain.UserSummary{
					Name:    rec.Name,
					Email:   rec.Email,
					Weekday: domain.Weekday(rec.Day),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// ToggleStatus flips every record inside one read-write transaction, so
// readers see either the old or the new set, never a mix.
func (r *userRepository) ToggleStatus(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var modified int64
	err := r.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(boltdb.BucketUsers)

		updates := make(map[string][]byte)
		err := users.ForEach(func(k, v []byte) error {
			var rec userRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("bolt: decode user %s: %w", k, err)
			}
			rec.Status = string(domain.UserStatus(rec.Status).Toggled())
			payload, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			updates[string(k)] = payload
			return nil
		})
		if err != nil {
			return err
		}

		for k, payload := range updates {
			if err := users.Put([]byte(k), payload); err != nil {
				return err
			}
		}
		modified = int64(len(updates))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return modified, nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(boltdb.BucketUsers) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	n, err := boltdb.Size(r.db)
	return int64(n), err
}

func getUser(tx *bolt.Tx, id []byte) (*domain.User, error) {
	raw := tx.Bucket(boltdb.BucketUsers).Get(id)
	if raw == nil {
		return nil, domain.ErrUserNotFound
	}
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func dayPrefix(day int) []byte {
	return []byte(fmt.Sprintf("%d/", day))
}

func dayKey(day int, id string) []byte {
	return append(dayPrefix(day), id...)
}

func toRecord(u *domain.User) userRecord {
	return userRecord{
		Name:         u.Name,
		Email:        u.Email,
		Password:     u.PasswordHash,
		Address:      u.Address,
		Latitude:     u.Latitude,
		Longitude:    u.Longitude,
		Status:       string(u.Status),
		RegisteredAt: u.RegisteredAt,
		Day:          int(u.Weekday),
	}
}

func (rec userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.Password,
		Address:      rec.Address,
		Latitude:     rec.Latitude,
		Longitude:    rec.Longitude,
		Status:       domain.UserStatus(rec.Status),
		RegisteredAt: rec.RegisteredAt,
		Weekday:      domain.Weekday(rec.Day),
	}
}

var (
	_ repository.UserRepository = (*userRepository)(nil)
	_ repository.Pinger         = (*userRepository)(nil)
	_ repository.Counter        = (*userRepository)(nil)
)
