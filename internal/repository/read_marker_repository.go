package repository

import (
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
	"gorm.io/gorm"
)

type ReadMarkerRepository struct {
	db *gorm.DB
}

func NewReadMarkerRepository(db *gorm.DB) *ReadMarkerRepository {
	return &ReadMarkerRepository{db: db}
}

// UpsertRead records a read position. Without force the upsert is monotonic:
// GREATEST keeps the newer of the stored and incoming timestamps, and
// GREATEST ignores a NULL stored value. With force the incoming timestamp
// always wins, which backs "mark unread until reply N".
func (r *ReadMarkerRepository) UpsertRead(userID, targetID uint, kind models.TargetKind, readAt time.Time, force bool) error {
	if force {
		return r.db.Exec(`
			INSERT INTO read_markers (user_id, target_id, target_kind, read_at, ignored, warnings_hidden, created_at, updated_at)
			VALUES (?, ?, ?, ?, false, false, NOW(), NOW())
			ON CONFLICT (user_id, target_id, target_kind) DO UPDATE
			SET read_at = EXCLUDED.read_at,
				updated_at = NOW()
		`, userID, targetID, kind, readAt).Error
	}
	return r.db.Exec(`
		INSERT INTO read_markers (user_id, target_id, target_kind, read_at, ignored, warnings_hidden, created_at, updated_at)
		VALUES (?, ?, ?, ?, false, false, NOW(), NOW())
		ON CONFLICT (user_id, target_id, target_kind) DO UPDATE
		SET read_at = GREATEST(read_markers.read_at, EXCLUDED.read_at),
			updated_at = NOW()
	`, userID, targetID, kind, readAt).Error
}

// SetIgnored flips the ignore flag without touching read_at.
func (r *ReadMarkerRepository) SetIgnored(userID, targetID uint, kind models.TargetKind, ignored bool) error {
	return r.db.Exec(`
		INSERT INTO read_markers (user_id, target_id, target_kind, read_at, ignored, warnings_hidden, created_at, updated_at)
		VALUES (?, ?, ?, NULL, ?, false, NOW(), NOW())
		ON CONFLICT (user_id, target_id, target_kind) DO UPDATE
		SET ignored = EXCLUDED.ignored,
			updated_at = NOW()
	`, userID, targetID, kind, ignored).Error
}

// SetWarningsHidden flips warning visibility without touching read_at.
func (r *ReadMarkerRepository) SetWarningsHidden(userID, targetID uint, kind models.TargetKind, hidden bool) error {
	return r.db.Exec(`
		INSERT INTO read_markers (user_id, target_id, target_kind, read_at, ignored, warnings_hidden, created_at, updated_at)
		VALUES (?, ?, ?, NULL, false, ?, NOW(), NOW())
		ON CONFLICT (user_id, target_id, target_kind) DO UPDATE
		SET warnings_hidden = EXCLUDED.warnings_hidden,
			updated_at = NOW()
	`, userID, targetID, kind, hidden).Error
}

// ResetWarningsHidden re-surfaces warnings for every user who had hidden
// them on a post, leaving read positions untouched. Fired when a new warning
// label is added.
func (r *ReadMarkerRepository) ResetWarningsHidden(postID uint) error {
	return r.db.Model(&models.ReadMarker{}).
		Where("target_id = ? AND target_kind = ? AND warnings_hidden = true", postID, models.TargetPost).
		Update("warnings_hidden", false).Error
}

func (r *ReadMarkerRepository) Find(userID, targetID uint, kind models.TargetKind) (*models.ReadMarker, error) {
	var marker models.ReadMarker
	err := r.db.Where("user_id = ? AND target_id = ? AND target_kind = ?", userID, targetID, kind).
		First(&marker).Error
	if err != nil {
		return nil, err
	}
	return &marker, nil
}

// FindPair fetches the post-level and continuity-level markers in one query.
// Either may be nil when the user never touched that target.
func (r *ReadMarkerRepository) FindPair(userID, postID, continuityID uint) (*models.ReadMarker, *models.ReadMarker, error) {
	var markers []models.ReadMarker
	err := r.db.Where(
		"user_id = ? AND ((target_id = ? AND target_kind = ?) OR (target_id = ? AND target_kind = ?))",
		userID, postID, models.TargetPost, continuityID, models.TargetContinuity,
	).Find(&markers).Error
	if err != nil {
		return nil, nil, err
	}

	var postMarker, continuityMarker *models.ReadMarker
	for i := range markers {
		switch markers[i].TargetKind {
		case models.TargetPost:
			postMarker = &markers[i]
		case models.TargetContinuity:
			continuityMarker = &markers[i]
		}
	}
	return postMarker, continuityMarker, nil
}
