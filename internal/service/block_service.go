package service

import (
	"github.com/quillforge/continuum-backend/internal/cache"
	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
)

// BlockService manages block relationships and the per-user derived post
// sets cached from them. Authoritative state always wins: cache entries are
// deleted on every relevant write and recomputed lazily on the next read.
type BlockService struct {
	blockRepo  repository.BlockRepositoryInterface
	blockCache *cache.BlockCache
}

func NewBlockService(blockRepo repository.BlockRepositoryInterface, blockCache *cache.BlockCache) *BlockService {
	return &BlockService{blockRepo: blockRepo, blockCache: blockCache}
}

// SetBlock creates or updates a directional block and invalidates both
// users' derived sets.
func (s *BlockService) SetBlock(blockingUserID, blockedUserID uint, hideMe, hideThem bool) error {
	if err := s.blockRepo.Upsert(&models.Block{
		BlockingUserID: blockingUserID,
		BlockedUserID:  blockedUserID,
		HideMe:         hideMe,
		HideThem:       hideThem,
	}); err != nil {
		return err
	}
	return s.blockCache.InvalidateUsers([]uint{blockingUserID, blockedUserID})
}

// RemoveBlock deletes a block and invalidates both users' derived sets.
func (s *BlockService) RemoveBlock(blockingUserID, blockedUserID uint) error {
	if err := s.blockRepo.Delete(blockingUserID, blockedUserID); err != nil {
		return err
	}
	return s.blockCache.InvalidateUsers([]uint{blockingUserID, blockedUserID})
}

// HiddenPosts returns the posts the user hides because they block an author
// there, from cache or fresh recomputation.
func (s *BlockService) HiddenPosts(userID uint) ([]uint, error) {
	if ids, ok := s.blockCache.Get(cache.BlockHidden, userID); ok {
		return ids, nil
	}
	ids, err := s.blockRepo.ListHiddenPostIDs(userID)
	if err != nil {
		return nil, err
	}
	_ = s.blockCache.Set(cache.BlockHidden, userID, ids)
	return ids, nil
}

// BlockedPosts returns the posts hidden from the user because an author
// there blocks them.
func (s *BlockService) BlockedPosts(userID uint) ([]uint, error) {
	if ids, ok := s.blockCache.Get(cache.BlockBlocked, userID); ok {
		return ids, nil
	}
	ids, err := s.blockRepo.ListBlockedPostIDs(userID)
	if err != nil {
		return nil, err
	}
	_ = s.blockCache.Set(cache.BlockBlocked, userID, ids)
	return ids, nil
}

// HiddenSet returns HiddenPosts as a membership set.
func (s *BlockService) HiddenSet(userID uint) (map[uint]bool, error) {
	ids, err := s.HiddenPosts(userID)
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

// BlockedSet returns BlockedPosts as a membership set.
func (s *BlockService) BlockedSet(userID uint) (map[uint]bool, error) {
	ids, err := s.BlockedPosts(userID)
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

// InvalidateForPostAuthors drops the derived sets of every user who blocks
// or is blocked by any author of the post. Called whenever the post's author
// list changes.
func (s *BlockService) InvalidateForPostAuthors(postID uint) error {
	userIDs, err := s.blockRepo.ListAffectedUserIDs(postID)
	if err != nil {
		return err
	}
	return s.blockCache.InvalidateUsers(userIDs)
}

// InvalidateUsers drops the derived sets for the given users. Used when the
// affected set was captured before a write removed an author record, since
// recomputing it afterwards would miss users tied to the departed author.
func (s *BlockService) InvalidateUsers(userIDs []uint) error {
	return s.blockCache.InvalidateUsers(userIDs)
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
