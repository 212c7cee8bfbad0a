package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/pagegen/internal/domain"

	"github.com/redis/go-redis/v9"
)

type StateManager interface {
	GetLastBuild(ctx context.Context, storeID string) (*domain.BuildInfo, error)
	SetLastBuild(ctx context.Context, info *domain.BuildInfo) error
}

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   "storefront:build:last:",
	}
}

// GetLastBuild returns nil when the store has never been built
func (s *redisStateManager) GetLastBuild(ctx context.Context, storeID string) (*domain.BuildInfo, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+storeID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last build for store %s: %w", storeID, err)
	}

	var info domain.BuildInfo
	if err := json.Unmarshal([]byte(val), &info); err != nil {
		return nil, fmt.Errorf("failed to decode last build for store %s: %w", storeID, err)
	}

	return &info, nil
}

func (s *redisStateManager) SetLastBuild(ctx context.Context, info *domain.BuildInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode build %s: %w", info.BuildID, err)
	}

	if err := s.redisClient.Set(ctx, s.keyPrefix+info.StoreID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set last build for store %s: %w", info.StoreID, err)
	}
	return nil
}
