package repository

import (
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// UnreadCandidateRow carries a post together with the requesting user's read
// markers at both granularities and the columns the visibility check needs.
// The unread decision itself is made by the read-state resolver, not here.
type UnreadCandidateRow struct {
	PostID           uint                `json:"post_id"`
	ContinuityID     uint                `json:"continuity_id"`
	CreatorID        uint                `json:"creator_id"`
	Subject          string              `json:"subject"`
	Privacy          models.PrivacyLevel `json:"privacy"`
	TaggedAt         time.Time           `json:"tagged_at"`
	EditedAt         time.Time           `json:"edited_at"`
	PostReadAt       *time.Time          `json:"post_read_at"`
	ContinuityReadAt *time.Time          `json:"continuity_read_at"`
	HasPostMarker    bool                `json:"has_post_marker"`
	IsAuthor         bool                `json:"is_author"`
}

func (r *PostRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *PostRepository) FindByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) UpdateTaggedAt(postID uint, taggedAt time.Time) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("tagged_at", taggedAt).Error
}

func (r *PostRepository) SetStatus(postID uint, status models.PostStatus, editedAt time.Time) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{"status": status, "edited_at": editedAt}).Error
}

func (r *PostRepository) SetPrivacy(postID uint, privacy models.PrivacyLevel) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("privacy", privacy).Error
}

func (r *PostRepository) SetAuthorsLocked(postID uint, locked bool) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("authors_locked", locked).Error
}

// AddWarning attaches a warning label to a post. Returns true when the label
// was newly created, false when it already existed.
func (r *PostRepository) AddWarning(postID uint, label string) (bool, error) {
	res := r.db.Exec(`
		INSERT INTO content_warnings (post_id, label, created_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (post_id, label) DO NOTHING
	`, postID, label)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostRepository) ListWarnings(postID uint) ([]models.ContentWarning, error) {
	var warnings []models.ContentWarning
	err := r.db.Where("post_id = ?", postID).Order("created_at").Find(&warnings).Error
	return warnings, err
}

// ListUnreadCandidates joins every live post with the user's post-level and
// continuity-level markers, excluding ignored targets. Ordering is newest
// activity first.
func (r *PostRepository) ListUnreadCandidates(userID uint, openedOnly bool, limit int) ([]UnreadCandidateRow, error) {
	query := `
		SELECT
			p.id AS post_id,
			p.continuity_id,
			p.creator_id,
			p.subject,
			p.privacy,
			p.tagged_at,
			p.edited_at,
			pm.read_at AS post_read_at,
			cm.read_at AS continuity_read_at,
			(pm.id IS NOT NULL) AS has_post_marker,
			COALESCE(pa.joined, false) AS is_author
		FROM posts p
		LEFT JOIN read_markers pm
			ON pm.target_id = p.id AND pm.target_kind = 'post' AND pm.user_id = ?
		LEFT JOIN read_markers cm
			ON cm.target_id = p.continuity_id AND cm.target_kind = 'continuity' AND cm.user_id = ?
		LEFT JOIN post_authors pa
			ON pa.post_id = p.id AND pa.user_id = ?
		WHERE p.deleted_at IS NULL
			AND COALESCE(pm.ignored, false) = false
			AND COALESCE(cm.ignored, false) = false
	`
	if openedOnly {
		query += ` AND pm.id IS NOT NULL`
	}
	query += ` ORDER BY p.tagged_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		var rows []UnreadCandidateRow
		err := r.db.Raw(query, userID, userID, userID, limit).Scan(&rows).Error
		return rows, err
	}
	var rows []UnreadCandidateRow
	err := r.db.Raw(query, userID, userID, userID).Scan(&rows).Error
	return rows, err
}
