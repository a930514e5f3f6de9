package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fastygo/geouser/domain"
	mongoInfra "github.com/fastygo/geouser/internal/infrastructure/mongo"
	"github.com/fastygo/geouser/repository"
)

// userDocument is the stored shape of a user.
type userDocument struct {
	ID           bson.ObjectID `bson:"_id"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	Password     string        `bson:"password"`
	Address      string        `bson:"address"`
	Latitude     string        `bson:"latitude"`
	Longitude    string        `bson:"longitude"`
	Status       string        `bson:"status"`
	RegisteredAt time.Time     `bson:"register_at"`
	Day          int           `bson:"day"`
}

type summaryDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Day   int    `bson:"day"`
}

type userRepository struct {
	db  *mongodrv.Database
	col *mongodrv.Collection
}

// NewUserRepository returns a MongoDB-backed UserRepository.
func NewUserRepository(db *mongodrv.Database) repository.UserRepository {
	return &userRepository{db: db, col: db.Collection(mongoInfra.ColUsers)}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	doc := toDocument(user)
	doc.ID = bson.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongodrv.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *userRepository) ListByWeekdays(ctx context.Context, days []domain.Weekday) ([]domain.UserSummary, error) {
	if len(days) == 0 {
		return []domain.UserSummary{}, nil
	}

	codes := make(bson.A, 0, len(days))
	for _, d := range days {
		codes = append(codes, int(d))
	}

	filter := bson.D{{Key: "day", Value: bson.D{{Key: "$in", Value: codes}}}}
	projection := bson.D{
		{Key: "_id", Value: 0},
		{Key: "name", Value: 1},
		{Key: "email", Value: 1},
		{Key: "day", Value: 1},
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := []domain.UserSummary{}
	for cursor.Next(ctx) {
		var doc summaryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.UserSummary{
			Name:    doc.Name,
			Email:   doc.Email,
			Weekday: domain.Weekday(doc.Day),
		})
	}
	return summaries, cursor.Err()
}

// ToggleStatus runs a single pipeline update so the server flips every
// document without per-document round trips.
func (r *userRepository) ToggleStatus(ctx context.Context) (int64, error) {
	pipeline := mongodrv.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: bson.D{
				{Key: "$cond", Value: bson.D{
					{Key: "if", Value: bson.D{{Key: "$eq", Value: bson.A{"$status", string(domain.StatusActive)}}}},
					{Key: "then", Value: string(domain.StatusInactive)},
					{Key: "else", Value: string(domain.StatusActive)},
				}},
			}},
		}}},
	}

	res, err := r.col.UpdateMany(ctx, bson.D{}, pipeline)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

// Count returns the collection metadata estimate.
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return r.col.EstimatedDocumentCount(ctx)
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func toDocument(u *domain.User) userDocument {
	return userDocument{
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

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Address:      d.Address,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		Status:       domain.UserStatus(d.Status),
		RegisteredAt: d.RegisteredAt,
		Weekday:      domain.Weekday(d.Day),
	}
}

var (
	_ repository.UserRepository = (*userRepository)(nil)
	_ repository.Pinger         = (*userRepository)(nil)
	_ repository.Counter        = (*userRepository)(nil)
)
