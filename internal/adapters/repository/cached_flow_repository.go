package repository

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

var _ domain.FlowRepository = (*CachedFlowRepository)(nil)

const flowListKey = "flows:all"

// CachedFlowRepository caches the flow list (the hottest read: the
// dashboard and the schedule resolver both hit it) and invalidates on
// every write.
type CachedFlowRepository struct {
	next  domain.FlowRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedFlowRepository(next domain.FlowRepository, cache *redis.Client) *CachedFlowRepository {
	return &CachedFlowRepository{
		next:  next,
		cache: cache,
		ttl:   30 * time.Minute,
	}
}

func (r *CachedFlowRepository) invalidate(ctx context.Context) {
	if err := r.cache.Del(ctx, flowListKey).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate flow list: %v", err)
	}
}

func (r *CachedFlowRepository) List(ctx context.Context) ([]*domain.Flow, error) {
	val, err := r.cache.Get(ctx, flowListKey).Result()
	if err == nil {
		var flows []*domain.Flow
		if err := json.Unmarshal([]byte(val), &flows); err == nil {
			return flows, nil
		}

		log.Printf("[CACHE] Corrupted flow list, cleaning up key")
		r.cache.Del(ctx, flowListKey)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	flows, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(flows); err == nil {
		if setErr := r.cache.Set(ctx, flowListKey, data, r.ttl).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return flows, nil
}

func (r *CachedFlowRepository) GetByID(ctx context.Context, id string) (*domain.Flow, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedFlowRepository) Create(ctx context.Context, flow *domain.Flow) error {
	if err := r.next.Create(ctx, flow); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedFlowRepository) Update(ctx context.Context, flow *domain.Flow) error {
	if err := r.next.Update(ctx, flow); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedFlowRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}
