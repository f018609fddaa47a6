package cancel

import (
	"context"
	"time"

	"course_gen_backend/platform/cache"
)

// MemoryRegistry keeps cancel flags in an expiring in-process cache, so a
// cancel for a job that never runs is eventually dropped.
type MemoryRegistry struct {
	flags *cache.L1CacheService
}

func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{flags: cache.InitL1Cache(ttl)}
}

func (r *MemoryRegistry) MarkCanceled(_ context.Context, requestID string) error {
	r.flags.Set(requestID, struct{}{})
	return nil
}

func (r *MemoryRegistry) IsCanceled(_ context.Context, requestID string) bool {
	_, ok := r.flags.Get(requestID)
	return ok
}

func (r *MemoryRegistry) Clear(_ context.Context, requestID string) error {
	r.flags.Del(requestID)
	return nil
}
