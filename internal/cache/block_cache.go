package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// BlockKind selects which derived block set a key addresses.
type BlockKind string

const (
	// BlockHidden is the set of posts the user hides because they block an
	// author there.
	BlockHidden BlockKind = "hidden"
	// BlockBlocked is the set of posts hidden from the user because an
	// author there blocks them.
	BlockBlocked BlockKind = "blocked"
)

// BlockCache stores per-user derived post sets from block relationships.
// Like the visibility cache, entries never expire and are deleted on every
// block or authorship write.
type BlockCache struct {
	redis *RedisCache
}

// NewBlockCache creates a new block cache
func NewBlockCache(redis *RedisCache) *BlockCache {
	return &BlockCache{redis: redis}
}

func blockKey(kind BlockKind, userID uint) string {
	return fmt.Sprintf("block:%s:%d", kind, userID)
}

// Get retrieves a cached block set; errors degrade to a miss.
func (bc *BlockCache) Get(kind BlockKind, userID uint) ([]uint, bool) {
	if bc == nil || bc.redis == nil {
		return nil, false
	}
	data, err := bc.redis.Get(blockKey(kind, userID))
	if err != nil || data == nil {
		return nil, false
	}

	var ids []uint
	if err := msgpack.Unmarshal(data, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

// Set stores a freshly computed block set.
func (bc *BlockCache) Set(kind BlockKind, userID uint, ids []uint) error {
	if bc == nil || bc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(ids)
	if err != nil {
		return err
	}
	return bc.redis.Set(blockKey(kind, userID), data, 0)
}

// InvalidateUser drops both derived sets for a user. Idempotent.
func (bc *BlockCache) InvalidateUser(userID uint) error {
	if bc == nil || bc.redis == nil {
		return nil
	}
	return bc.redis.Delete(blockKey(BlockHidden, userID), blockKey(BlockBlocked, userID))
}

// InvalidateUsers drops both derived sets for several users at once.
func (bc *BlockCache) InvalidateUsers(userIDs []uint) error {
	if bc == nil || bc.redis == nil || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs)*2)
	for _, id := range userIDs {
		keys = append(keys, blockKey(BlockHidden, id), blockKey(BlockBlocked, id))
	}
	return bc.redis.Delete(keys...)
}
