package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/geouser/repository"
)

// Monitor pings the credential store and, when configured, Redis on a cron
// schedule and keeps the latest result for the health endpoint.
type Monitor struct {
	store  repository.Pinger
	driver string
	redis  *redislib.Client

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func New(store repository.Pinger, driver string, redis *redislib.Client, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		store:    store,
		driver:   driver,
		redis:    redis,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
}

// Start runs one check immediately and then every interval.
func (m *Monitor) Start() error {
	m.Refresh(context.Background())

	schedule := fmt.Sprintf("@every %ds", int(m.interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, func() {
		m.Refresh(context.Background())
	}); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop waits for a running check to finish or ctx to expire.
func (m *Monitor) Stop(ctx context.Context) error {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsOnline reports whether the credential store answered the last ping.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Store
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh pings every dependency and records the outcome.
func (m *Monitor) Refresh(ctx context.Context) {
	status := Status{
		Driver:       m.driver,
		Store:        m.checkStore(ctx),
		RedisEnabled: m.redis != nil,
		Redis:        m.checkRedis(ctx),
		LastCheck:    time.Now().UTC(),
	}
	if status.Store {
		status.Users = m.countUsers(ctx)
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if prev.Store != status.Store && !prev.LastCheck.IsZero() {
		m.logger.Warn("credential store availability changed",
			zap.String("driver", m.driver),
			zap.Bool("online", status.Store),
		)
	}
}

func (m *Monitor) checkStore(ctx context.Context) bool {
	if m.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := m.store.Ping(ctx); err != nil {
		m.logger.Debug("store ping failed", zap.Error(err))
		return false
	}
	return true
}

// countUsers returns nil when the store cannot count or the count fails.
func (m *Monitor) countUsers(ctx context.Context) *int64 {
	counter, ok := m.store.(repository.Counter)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	n, err := counter.Count(ctx)
	if err != nil {
		m.logger.Debug("store count failed", zap.Error(err))
		return nil
	}
	return &n
}

func (m *Monitor) checkRedis(ctx context.Context) bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}
