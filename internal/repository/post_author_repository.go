package repository

import (
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
	"gorm.io/gorm"
)

type PostAuthorRepository struct {
	db *gorm.DB
}

func NewPostAuthorRepository(db *gorm.DB) *PostAuthorRepository {
	return &PostAuthorRepository{db: db}
}

// OwedRow carries everything the obligation tracker needs to decide whether
// a post is owed: the obligation flags, the post's state, who contributed
// last, and the user's ignore markers.
type OwedRow struct {
	PostID            uint              `json:"post_id"`
	Subject           string            `json:"subject"`
	Status            models.PostStatus `json:"status"`
	TaggedAt          time.Time         `json:"tagged_at"`
	CanOwe            bool              `json:"can_owe"`
	LastContributorID uint              `json:"last_contributor_id"`
	PostIgnored       bool              `json:"post_ignored"`
	ContinuityIgnored bool              `json:"continuity_ignored"`
}

func (r *PostAuthorRepository) Find(postID, userID uint) (*models.PostAuthor, error) {
	var author models.PostAuthor
	err := r.db.Where("post_id = ? AND user_id = ?", postID, userID).First(&author).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *PostAuthorRepository) Create(author *models.PostAuthor) error {
	return r.db.Create(author).Error
}

func (r *PostAuthorRepository) Update(author *models.PostAuthor) error {
	return r.db.Save(author).Error
}

func (r *PostAuthorRepository) Delete(postID, userID uint) error {
	return r.db.Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostAuthor{}).Error
}

func (r *PostAuthorRepository) ListByPost(postID uint) ([]models.PostAuthor, error) {
	var authors []models.PostAuthor
	err := r.db.Where("post_id = ?", postID).Find(&authors).Error
	return authors, err
}

// ListOwedRows fetches the user's joined posts that are still open, together
// with the most recent contributor (the newest live reply's author, or the
// post creator when no replies exist).
func (r *PostAuthorRepository) ListOwedRows(userID uint) ([]OwedRow, error) {
	var rows []OwedRow
	err := r.db.Raw(`
		SELECT
			p.id AS post_id,
			p.subject,
			p.status,
			p.tagged_at,
			pa.can_owe,
			COALESCE((
				SELECT r.user_id FROM replies r
				WHERE r.post_id = p.id AND r.deleted_at IS NULL
				ORDER BY r.reply_order DESC
				LIMIT 1
			), p.creator_id) AS last_contributor_id,
			COALESCE(pm.ignored, false) AS post_ignored,
			COALESCE(cm.ignored, false) AS continuity_ignored
		FROM post_authors pa
		JOIN posts p ON p.id = pa.post_id AND p.deleted_at IS NULL
		LEFT JOIN read_markers pm
			ON pm.target_id = p.id AND pm.target_kind = 'post' AND pm.user_id = pa.user_id
		LEFT JOIN read_markers cm
			ON cm.target_id = p.continuity_id AND cm.target_kind = 'continuity' AND cm.user_id = pa.user_id
		WHERE pa.user_id = ? AND pa.joined = true
		ORDER BY p.tagged_at DESC
	`, userID).Scan(&rows).Error
	return rows, err
}
