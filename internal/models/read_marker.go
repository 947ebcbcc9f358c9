package models

import (
	"time"
)

type TargetKind string

const (
	TargetPost       TargetKind = "post"
	TargetContinuity TargetKind = "continuity"
)

// ReadMarker records a user's read position on a post or a whole continuity.
// ReadAt is monotonic per target per user unless explicitly forced backward
// ("mark unread until reply N"). Created lazily on first read or ignore.
type ReadMarker struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID     uint       `gorm:"not null;uniqueIndex:idx_user_target" json:"user_id"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_user_target" json:"target_id"`
	TargetKind TargetKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_target" json:"target_kind"`

	// ReadAt is nil when the marker was created by an ignore or
	// hide-warnings action without ever marking read.
	ReadAt *time.Time `json:"read_at"`

	Ignored        bool `gorm:"default:false" json:"ignored"`
	WarningsHidden bool `gorm:"default:false" json:"warnings_hidden"`
}
