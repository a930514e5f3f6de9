package main

import (
	"context"
	"fmt"
	"log"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/geouser/api/handler"
	"github.com/fastygo/geouser/internal/config"
	boltInfra "github.com/fastygo/geouser/internal/infrastructure/boltdb"
	"github.com/fastygo/geouser/internal/infrastructure/monitor"
	mongoInfra "github.com/fastygo/geouser/internal/infrastructure/mongo"
	pgInfra "github.com/fastygo/geouser/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/geouser/internal/infrastructure/redis"
	"github.com/fastygo/geouser/internal/middleware"
	"github.com/fastygo/geouser/internal/router"
	"github.com/fastygo/geouser/internal/services/lifecycle"
	"github.com/fastygo/geouser/pkg/httpcontext"
	"github.com/fastygo/geouser/pkg/logger"
	"github.com/fastygo/geouser/pkg/metrics"
	"github.com/fastygo/geouser/pkg/password"
	"github.com/fastygo/geouser/pkg/token"
	"github.com/fastygo/geouser/repository"
	boltRepo "github.com/fastygo/geouser/repository/bolt"
	mongoRepo "github.com/fastygo/geouser/repository/mongo"
	pgRepo "github.com/fastygo/geouser/repository/postgres"
	authUC "github.com/fastygo/geouser/usecase/auth"
	distanceUC "github.com/fastygo/geouser/usecase/distance"
	listingUC "github.com/fastygo/geouser/usecase/listing"
	statusUC "github.com/fastygo/geouser/usecase/status"
)

type store interface {
	repository.UserRepository
	repository.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.NotifyContext(context.Background())
	defer stop()

	users, err := openStore(appCtx, cfg, zapLogger, manager)
	if err != nil {
		zapLogger.Fatal("credential store unavailable", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	var redisClient *goRedis.Client
	if cfg.RateLimit.Enabled {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	mon := monitor.New(users, cfg.Store.Driver, redisClient, cfg.Monitor.Interval, zapLogger)
	if err := mon.Start(); err != nil {
		zapLogger.Fatal("monitor start failed", zap.Error(err))
	}
	manager.Register("monitor", mon.Stop)

	codec, err := token.New(cfg.JWT.Secret, cfg.JWT.TTL, token.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		zapLogger.Fatal("token codec", zap.Error(err))
	}

	var appMetrics *metrics.Metrics
	if cfg.HTTP.EnableMetrics {
		appMetrics = metrics.New(cfg.AppName)
	}

	hasher := password.NewBcrypt(cfg.Hash.Rounds)
	authUseCase := authUC.New(users, codec, hasher, zapLogger,
		authUC.WithLocation(cfg.Clock.Location),
		authUC.WithMetrics(appMetrics),
	)
	statusUseCase := statusUC.New(users, zapLogger, appMetrics)
	listingUseCase := listingUC.New(users, zapLogger)
	distanceUseCase := distanceUC.New()

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		User:   apiHandler.NewUserHandler(statusUseCase, distanceUseCase, listingUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	if appMetrics != nil {
		handlers.Metrics = appMetrics.Handler()
	}

	mw := router.Middlewares{
		Gate: middleware.SessionGate(authUseCase, ctxAdapter, zapLogger, appMetrics),
	}
	if redisClient != nil {
		limiter := redisInfra.NewFixedWindow(redisClient, cfg.AppName+":register:", cfg.RateLimit.Requests, cfg.RateLimit.Window)
		mw.RateLimit = middleware.RateLimit(limiter, ctxAdapter, zapLogger, appMetrics)
	}

	r := router.New(handlers, mw, zapLogger)

	server := &fasthttp.Server{
		Handler:      middleware.AccessLog(zapLogger, appMetrics)(middleware.CORS(cfg.CORS)(r.Handler)),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("env", cfg.Environment),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("rate_limit", redisClient != nil),
			zap.Int("hash_cost", hasher.Cost()),
			zap.String("cors_origin", cfg.CORS.Origin),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openStore connects the configured credential store and registers its
// shutdown hook.
func openStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger, manager *lifecycle.Manager) (store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongoInfra.Connect(ctx, cfg.Mongo, zapLogger)
		if err != nil {
			return nil, err
		}
		manager.Register("mongo", func(ctx context.Context) error {
			return mongoInfra.Disconnect(ctx, client)
		})
		return mongoRepo.NewUserRepository(db).(store), nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			return nil, err
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		return pgRepo.NewUserRepository(pool).(store), nil

	case config.DriverBolt:
		db, err := boltInfra.Open(cfg.Bolt.Path)
		if err != nil {
			return nil, err
		}
		manager.Register("boltdb", func(ctx context.Context) error {
			return db.Close()
		})
		zapLogger.Info("opened embedded store", zap.String("path", cfg.Bolt.Path))
		return boltRepo.NewUserRepository(db).(store), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
