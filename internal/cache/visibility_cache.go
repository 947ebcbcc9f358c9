package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// VisibilityCache stores, per user, the derived set of access-restricted
// post IDs that user may see. Entries never expire; correctness comes from
// write-through invalidation after every membership or privacy write.
type VisibilityCache struct {
	redis *RedisCache
}

// NewVisibilityCache creates a new visibility cache
func NewVisibilityCache(redis *RedisCache) *VisibilityCache {
	return &VisibilityCache{redis: redis}
}

func visibilityKey(userID uint) string {
	return fmt.Sprintf("visibility:post_viewer:%d", userID)
}

// Get retrieves the cached visible set. A cache error is reported as a miss
// so callers fall back to recomputation rather than stale data.
func (vc *VisibilityCache) Get(userID uint) ([]uint, bool) {
	if vc == nil || vc.redis == nil {
		return nil, false
	}
	data, err := vc.redis.Get(visibilityKey(userID))
	if err != nil || data == nil {
		return nil, false
	}

	var ids []uint
	if err := msgpack.Unmarshal(data, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

// Set stores the freshly computed visible set.
func (vc *VisibilityCache) Set(userID uint, ids []uint) error {
	if vc == nil || vc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(ids)
	if err != nil {
		return err
	}
	return vc.redis.Set(visibilityKey(userID), data, 0)
}

// Invalidate drops the cached set for one user. Idempotent.
func (vc *VisibilityCache) Invalidate(userID uint) error {
	if vc == nil || vc.redis == nil {
		return nil
	}
	return vc.redis.Delete(visibilityKey(userID))
}

// InvalidateMany drops cached sets for several users in one round trip.
func (vc *VisibilityCache) InvalidateMany(userIDs []uint) error {
	if vc == nil || vc.redis == nil || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = visibilityKey(id)
	}
	return vc.redis.Delete(keys...)
}
