package status

import (
	"context"

	"go.uber.org/zap"

	appLogger "github.com/fastygo/geouser/pkg/logger"
	"github.com/fastygo/geouser/pkg/metrics"
	"github.com/fastygo/geouser/repository"
)

type UseCase struct {
	users   repository.UserRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(users repository.UserRepository, logger *zap.Logger, m *metrics.Metrics) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:   users,
		logger:  logger,
		metrics: m,
	}
}

// ToggleAll flips every account between active and inactive in one store
// operation and reports how many records changed.
func (uc *UseCase) ToggleAll(ctx context.Context) (int64, error) {
	modified, err := uc.users.ToggleStatus(ctx)
	if err != nil {
		return 0, err
	}

	uc.metrics.RecordToggle(modified)
	appLogger.WithRequestID(ctx, uc.logger).Info("account statuses toggled", zap.Int64("modified", modified))
	return modified, nil
}
