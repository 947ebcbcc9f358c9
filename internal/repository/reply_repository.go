package repository

import (
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
	"gorm.io/gorm"
)

type ReplyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) *ReplyRepository {
	return &ReplyRepository{db: db}
}

func (r *ReplyRepository) Create(reply *models.Reply) error {
	return r.db.Create(reply).Error
}

func (r *ReplyRepository) Update(reply *models.Reply) error {
	return r.db.Save(reply).Error
}

func (r *ReplyRepository) FindByID(id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// FindByIDUnscoped also finds soft-deleted replies, used for restore.
func (r *ReplyRepository) FindByIDUnscoped(id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.Unscoped().First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *ReplyRepository) ListByPost(postID uint) ([]models.Reply, error) {
	var replies []models.Reply
	err := r.db.Where("post_id = ?", postID).Order("reply_order").Find(&replies).Error
	return replies, err
}

func (r *ReplyRepository) CountActive(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reply{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *ReplyRepository) CountByUser(postID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reply{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count, err
}

// FindFirstAfter returns the first reply, in reply order, created strictly
// after the given time. Returns gorm.ErrRecordNotFound when the post is
// fully read past that time.
func (r *ReplyRepository) FindFirstAfter(postID uint, after time.Time) (*models.Reply, error) {
	var reply models.Reply
	err := r.db.Where("post_id = ? AND created_at > ?", postID, after).
		Order("reply_order").
		First(&reply).Error
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *ReplyRepository) FindNewest(postID uint) (*models.Reply, error) {
	var reply models.Reply
	err := r.db.Where("post_id = ?", postID).
		Order("created_at DESC").
		First(&reply).Error
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *ReplyRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.Reply{}, id).Error
}

// Restore clears the soft-delete flag, preserving the reply's original
// created_at exactly so ordering and tagged_at stay reproducible.
func (r *ReplyRepository) Restore(id uint) error {
	return r.db.Unscoped().Model(&models.Reply{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}

// CloseOrderGap shifts replies after a deleted one down by one so reply
// orders stay dense and zero-based.
func (r *ReplyRepository) CloseOrderGap(postID uint, fromOrder int) error {
	return r.db.Exec(`
		UPDATE replies
		SET reply_order = reply_order - 1
		WHERE post_id = ? AND reply_order > ? AND deleted_at IS NULL
	`, postID, fromOrder).Error
}

// ReorderByCreatedAt reassigns dense zero-based reply orders from creation
// times, used after restoring a reply into the middle of a post.
func (r *ReplyRepository) ReorderByCreatedAt(postID uint) error {
	return r.db.Exec(`
		UPDATE replies
		SET reply_order = numbered.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY created_at, id) AS rn
			FROM replies
			WHERE post_id = ? AND deleted_at IS NULL
		) AS numbered
		WHERE replies.id = numbered.id
	`, postID).Error
}
