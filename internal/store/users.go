package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/incline-app/incline-backend/internal/models"
)

// CachedUsers fronts PostgresStore with the Redis profile cache. Cache
// errors are logged and never returned.
type CachedUsers struct {
	*PostgresStore
	cache  *ProfileCache
	logger *zap.Logger
}

func NewCachedUsers(pg *PostgresStore, cache *ProfileCache, logger *zap.Logger) *CachedUsers {
	return &CachedUsers{PostgresStore: pg, cache: cache, logger: logger}
}

// UpdateProfile writes through to PostgreSQL and drops the cached profile.
func (u *CachedUsers) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	user, err := u.PostgresStore.UpdateProfile(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if err := u.cache.Invalidate(ctx, id); err != nil {
		u.logger.Warn("profile cache invalidate failed", zap.String("user_id", id), zap.Error(err))
	}
	return user, nil
}

// PublicProfiles serves hits from Redis and loads misses from PostgreSQL.
func (u *CachedUsers) PublicProfiles(ctx context.Context, ids []string) (map[string]models.PublicProfile, error) {
	ids = dedupe(ids)
	found, missing, err := u.cache.GetMany(ctx, ids)
	if err != nil {
		u.logger.Warn("profile cache read failed", zap.Error(err))
	}
	if len(missing) == 0 {
		return found, nil
	}

	loaded, err := u.PostgresStore.PublicProfiles(ctx, missing)
	if err != nil {
		return nil, err
	}
	if err := u.cache.SetMany(ctx, loaded); err != nil {
		u.logger.Warn("profile cache write failed", zap.Error(err))
	}
	for id, p := range loaded {
		found[id] = p
	}
	return found, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
