package repository

import (
	"github.com/quillforge/continuum-backend/internal/models"
	"gorm.io/gorm"
)

type AccessRepository struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// ListVisiblePostIDs recomputes from authoritative state the set of
// access-restricted posts the user may see, via direct viewer grants or
// membership in an attached circle.
func (r *AccessRepository) ListVisiblePostIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Raw(`
		SELECT DISTINCT p.id
		FROM posts p
		LEFT JOIN post_viewers pv ON pv.post_id = p.id AND pv.user_id = ?
		LEFT JOIN post_circles pc ON pc.post_id = p.id
		LEFT JOIN circle_members cm ON cm.circle_id = pc.circle_id AND cm.user_id = ?
		WHERE p.privacy = 'access_list'
			AND p.deleted_at IS NULL
			AND (pv.user_id IS NOT NULL OR cm.user_id IS NOT NULL)
	`, userID, userID).Scan(&ids).Error
	return ids, err
}

func (r *AccessRepository) ListViewerIDs(postID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.PostViewer{}).
		Where("post_id = ?", postID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *AccessRepository) ReplaceViewers(postID uint, userIDs []uint) error {
	if err := r.db.Where("post_id = ?", postID).Delete(&models.PostViewer{}).Error; err != nil {
		return err
	}
	for _, userID := range userIDs {
		if err := r.db.Create(&models.PostViewer{PostID: postID, UserID: userID}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *AccessRepository) AddViewer(postID, userID uint) error {
	return r.db.Exec(`
		INSERT INTO post_viewers (post_id, user_id, granted_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, postID, userID).Error
}

func (r *AccessRepository) RemoveViewer(postID, userID uint) error {
	return r.db.Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostViewer{}).Error
}

func (r *AccessRepository) CreateCircle(circle *models.AccessCircle) error {
	return r.db.Create(circle).Error
}

func (r *AccessRepository) FindCircle(id uint) (*models.AccessCircle, error) {
	var circle models.AccessCircle
	if err := r.db.Preload("Members").First(&circle, id).Error; err != nil {
		return nil, err
	}
	return &circle, nil
}

func (r *AccessRepository) AddCircleMember(circleID, userID uint) error {
	return r.db.Exec(`
		INSERT INTO circle_members (circle_id, user_id, added_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (circle_id, user_id) DO NOTHING
	`, circleID, userID).Error
}

func (r *AccessRepository) RemoveCircleMember(circleID, userID uint) error {
	return r.db.Where("circle_id = ? AND user_id = ?", circleID, userID).
		Delete(&models.CircleMember{}).Error
}

func (r *AccessRepository) ListCircleMemberIDs(circleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.CircleMember{}).
		Where("circle_id = ?", circleID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *AccessRepository) AttachCircle(postID, circleID uint) error {
	return r.db.Exec(`
		INSERT INTO post_circles (post_id, circle_id)
		VALUES (?, ?)
		ON CONFLICT (post_id, circle_id) DO NOTHING
	`, postID, circleID).Error
}

func (r *AccessRepository) DetachCircle(postID, circleID uint) error {
	return r.db.Where("post_id = ? AND circle_id = ?", postID, circleID).
		Delete(&models.PostCircle{}).Error
}

// ListAffectedUserIDs returns everyone whose visibility of the post could
// depend on its access list: direct viewers plus members of attached
// circles. Used when the post's privacy level flips.
func (r *AccessRepository) ListAffectedUserIDs(postID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Raw(`
		SELECT pv.user_id FROM post_viewers pv WHERE pv.post_id = ?
		UNION
		SELECT cm.user_id
		FROM post_circles pc
		JOIN circle_members cm ON cm.circle_id = pc.circle_id
		WHERE pc.post_id = ?
	`, postID, postID).Scan(&ids).Error
	return ids, err
}

func (r *AccessRepository) IsViewer(postID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.PostViewer{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *AccessRepository) IsCircleViewer(postID, userID uint) (bool, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*)
		FROM post_circles pc
		JOIN circle_members cm ON cm.circle_id = pc.circle_id
		WHERE pc.post_id = ? AND cm.user_id = ?
	`, postID, userID).Scan(&count).Error
	return count > 0, err
}
