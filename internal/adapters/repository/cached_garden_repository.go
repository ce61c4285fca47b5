package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.GardenRepository = (*CachedGardenRepository)(nil)

// CachedGardenRepository is a read-through cache over the garden store.
// Gardens change only when a flower is planted, so the listing is a good
// cache candidate; every write invalidates the owner's key.
type CachedGardenRepository struct {
	next  domain.GardenRepository
	cache *redis.Client
}

func NewCachedGardenRepository(next domain.GardenRepository, cache *redis.Client) *CachedGardenRepository {
	return &CachedGardenRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedGardenRepository) cacheKey(userID string) string {
	return fmt.Sprintf("garden:%s", userID)
}

func (r *CachedGardenRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

func (r *CachedGardenRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.PlantedFlower, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var flowers []*domain.PlantedFlower
		if err := json.Unmarshal([]byte(val), &flowers); err == nil {
			return flowers, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	flowers, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(flowers); err == nil {
		if setErr := r.cache.Set(ctx, key, data, 30*time.Minute).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return flowers, nil
}

// GetBySlot always hits the store: occupancy checks run inside the plant
// transaction and must not see stale data.
func (r *CachedGardenRepository) GetBySlot(ctx context.Context, userID string, position int) (*domain.PlantedFlower, error) {
	return r.next.GetBySlot(ctx, userID, position)
}

func (r *CachedGardenRepository) Create(ctx context.Context, flower *domain.PlantedFlower) error {
	if err := r.next.Create(ctx, flower); err != nil {
		return err
	}
	r.invalidate(ctx, flower.UserID)
	return nil
}
