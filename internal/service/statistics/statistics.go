package statistics

import (
	"context"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/internal/service/policy"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

// PopularLevelsLimit is the size of the most-popular list in the platform overview.
const PopularLevelsLimit = 5

type Aggregator interface {
	PlatformStatistics(ctx context.Context, top int) (*models.PlatformStatistics, error)
	UserCounts(ctx context.Context, userID uuid.UUID) (*models.UserCounts, error)
}

type UserRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Cache interface {
	Platform(ctx context.Context) (*models.PlatformStatistics, bool, error)
	SetPlatform(ctx context.Context, st *models.PlatformStatistics) error
}

type StatisticsService struct {
	log   logger.Log
	agg   Aggregator
	users UserRepo
	cache Cache
}

func NewStatisticsService(l logger.Log, agg Aggregator, users UserRepo, cache Cache) *StatisticsService {
	return &StatisticsService{log: l, agg: agg, users: users, cache: cache}
}

// Platform returns the platform overview, served from cache when possible.
// Cache failures fall through to the database.
func (s *StatisticsService) Platform(ctx context.Context, actor models.Actor) (*models.PlatformStatistics, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if s.cache != nil {
		st, ok, err := s.cache.Platform(ctx)
		switch {
		case err != nil:
			s.log.ErrorErr("failed to read statistics cache", err)
		case ok:
			return st, nil
		}
	}

	st, err := s.agg.PlatformStatistics(ctx, PopularLevelsLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPlatform(ctx, st); err != nil {
			s.log.ErrorErr("failed to write statistics cache", err)
		}
	}
	return st, nil
}

func (s *StatisticsService) User(ctx context.Context, actor models.Actor, userID uuid.UUID) (*models.UserStatistics, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.agg.UserCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := models.BuildUserStatistics(userID, *counts)
	st.UserName = user.Name
	return &st, nil
}
