package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/fastygo/geouser/internal/config"
)

// ColUsers holds one document per registered user.
const ColUsers = "users"

// Connect opens a client, verifies it with a ping and ensures indexes on the target database.
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*mongodrv.Client, *mongodrv.Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	client, err := mongodrv.Connect(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo: ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := EnsureIndexes(pingCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	logger.Info("connected to mongo", zap.String("db", cfg.Database))
	return client, db, nil
}

// EnsureIndexes creates the unique email index and the weekday index used by listings.
func EnsureIndexes(ctx context.Context, db *mongodrv.Database) error {
	models := []mongodrv.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "day", Value: 1}},
			Options: options.Index().SetName("day"),
		},
	}
	if _, err := db.Collection(ColUsers).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo: create indexes on %s: %w", ColUsers, err)
	}
	return nil
}

// Disconnect closes the client with a bounded timeout.
func Disconnect(ctx context.Context, client *mongodrv.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
