package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/incline-app/incline-backend/internal/models"
)

const ProfileCacheTTL = 10 * time.Minute

// ProfileCache keeps public profiles in Redis so appointment listings do
// not hit PostgreSQL for every counterpart.
type ProfileCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProfileCache(rdb *redis.Client) *ProfileCache {
	return &ProfileCache{rdb: rdb, ttl: ProfileCacheTTL}
}

func profileKey(id string) string { return "profile:" + id }

// GetMany returns the cached profiles for ids and the ids that missed.
func (c *ProfileCache) GetMany(ctx context.Context, ids []string) (map[string]models.PublicProfile, []string, error) {
	found := make(map[string]models.PublicProfile, len(ids))
	if len(ids) == 0 {
		return found, nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return found, ids, fmt.Errorf("profile cache get: %w", err)
	}

	var missing []string
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var p models.PublicProfile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = p
	}
	return found, missing, nil
}

// SetMany stores profiles with the cache TTL.
func (c *ProfileCache) SetMany(ctx context.Context, profiles map[string]models.PublicProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for id, p := range profiles {
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("profile cache encode: %w", err)
		}
		pipe.Set(ctx, profileKey(id), raw, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("profile cache set: %w", err)
	}
	return nil
}

// Invalidate removes a cached profile.
func (c *ProfileCache) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, profileKey(id)).Err()
}
