package listing

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/geouser/domain"
	"github.com/fastygo/geouser/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

// ByWeekdays groups accounts by registration day name. Every valid requested
// day gets a key, empty or not; unknown codes are dropped.
func (uc *UseCase) ByWeekdays(ctx context.Context, requested []int) (map[string][]domain.UserSummary, error) {
	days := domain.FilterWeekdays(requested)
	if len(days) == 0 {
		return nil, domain.ErrNoValidDays
	}

	summaries, err := uc.users.ListByWeekdays(ctx, days)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.UserSummary, len(days))
	for _, day := range days {
		grouped[day.Name()] = []domain.UserSummary{}
	}
	for _, s := range summaries {
		name := s.Weekday.Name()
		if bucket, ok := grouped[name]; ok {
			grouped[name] = append(bucket, s)
		}
	}
	return grouped, nil
}
