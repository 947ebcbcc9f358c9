package repository

import (
	"github.com/quillforge/continuum-backend/internal/models"
	"gorm.io/gorm"
)

type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

func (r *BlockRepository) Upsert(block *models.Block) error {
	return r.db.Exec(`
		INSERT INTO blocks (blocking_user_id, blocked_user_id, hide_me, hide_them, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (blocking_user_id, blocked_user_id) DO UPDATE
		SET hide_me = EXCLUDED.hide_me,
			hide_them = EXCLUDED.hide_them,
			updated_at = NOW()
	`, block.BlockingUserID, block.BlockedUserID, block.HideMe, block.HideThem).Error
}

func (r *BlockRepository) Find(blockingUserID, blockedUserID uint) (*models.Block, error) {
	var block models.Block
	err := r.db.Where("blocking_user_id = ? AND blocked_user_id = ?", blockingUserID, blockedUserID).
		First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *BlockRepository) Delete(blockingUserID, blockedUserID uint) error {
	return r.db.Where("blocking_user_id = ? AND blocked_user_id = ?", blockingUserID, blockedUserID).
		Delete(&models.Block{}).Error
}

// ListHiddenPostIDs recomputes from authoritative state the posts the user
// hides for themselves: posts with a joined author the user blocks with
// hide_them.
func (r *BlockRepository) ListHiddenPostIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Raw(`
		SELECT DISTINCT pa.post_id
		FROM blocks b
		JOIN post_authors pa ON pa.user_id = b.blocked_user_id AND pa.joined = true
		JOIN posts p ON p.id = pa.post_id AND p.deleted_at IS NULL
		WHERE b.blocking_user_id = ? AND b.hide_them = true
	`, userID).Scan(&ids).Error
	return ids, err
}

// ListBlockedPostIDs recomputes the posts hidden from the user: posts with a
// joined author who blocks the user with hide_me.
func (r *BlockRepository) ListBlockedPostIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Raw(`
		SELECT DISTINCT pa.post_id
		FROM blocks b
		JOIN post_authors pa ON pa.user_id = b.blocking_user_id AND pa.joined = true
		JOIN posts p ON p.id = pa.post_id AND p.deleted_at IS NULL
		WHERE b.blocked_user_id = ? AND b.hide_me = true
	`, userID).Scan(&ids).Error
	return ids, err
}

// ListAffectedUserIDs returns every user who blocks or is blocked by any
// author of the post. Their cached block sets go stale when the post's
// author list changes.
func (r *BlockRepository) ListAffectedUserIDs(postID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Raw(`
		SELECT DISTINCT b.blocking_user_id
		FROM blocks b
		JOIN post_authors pa ON pa.user_id = b.blocked_user_id
		WHERE pa.post_id = ?
		UNION
		SELECT DISTINCT b.blocked_user_id
		FROM blocks b
		JOIN post_authors pa ON pa.user_id = b.blocking_user_id
		WHERE pa.post_id = ?
	`, postID, postID).Scan(&ids).Error
	return ids, err
}
