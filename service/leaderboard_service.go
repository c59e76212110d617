package service

import (
	"context"

	"banked/config"
	"banked/events"
	"banked/models"

	log "github.com/sirupsen/logrus"
)

const maxLeaderboardSize = 500

type leaderboardService struct {
	uowFactory UnitOfWorkFactory
	cache      LeaderboardCache
	config     *config.Config
}

// NewLeaderboard creates a new leaderboard. cache may be nil.
func NewLeaderboard(uowFactory UnitOfWorkFactory, cache LeaderboardCache, cfg *config.Config) Leaderboard {
	return &leaderboardService{
		uowFactory: uowFactory,
		cache:      cache,
		config:     cfg,
	}
}

// Top returns the accounts with the most xp. Cache failures fall back to the database.
func (s *leaderboardService) Top(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.config.LeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	// the generation is read before loading so an invalidation during the load wins
	cacheable := false
	var generation int64
	if s.cache != nil {
		entries, gen, ok, err := s.cache.Get(ctx, limit)
		if err != nil {
			log.WithError(err).Warn("Leaderboard cache read failed")
		} else if ok {
			return entries, nil
		} else {
			cacheable = true
			generation = gen
		}
	}

	var entries []*models.LeaderboardEntry
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		entries, err = uow.AccountRepository().GetTopByXP(ctx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, generation, limit, entries); err != nil {
			log.WithError(err).Warn("Leaderboard cache write failed")
		}
	}

	return entries, nil
}

// SubscribeLeaderboardInvalidation drops cached rankings whenever committed xp or membership changes
func SubscribeLeaderboardInvalidation(bus *events.Bus, cache LeaderboardCache) {
	invalidate := func(ctx context.Context) {
		if err := cache.Invalidate(ctx); err != nil {
			log.WithError(err).Warn("Leaderboard cache invalidation failed")
		}
	}

	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, event events.Event) {
		invalidate(ctx)
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		if change, ok := event.(events.BalanceChangeEvent); ok && change.Resource == models.ResourceXP {
			invalidate(ctx)
		}
	})
}
