package models

import (
	"time"
)

// Block is a directional relationship between two users. HideThem hides the
// blocked user's posts from the blocker's feeds; HideMe hides the blocker's
// posts from the blocked user.
type Block struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BlockingUserID uint `gorm:"not null;uniqueIndex:idx_blocking_blocked" json:"blocking_user_id"`
	BlockedUserID  uint `gorm:"not null;uniqueIndex:idx_blocking_blocked;index" json:"blocked_user_id"`

	HideMe   bool `gorm:"default:false" json:"hide_me"`
	HideThem bool `gorm:"default:false" json:"hide_them"`
}
