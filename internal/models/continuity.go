package models

import (
	"time"

	"gorm.io/gorm"
)

// Continuity is the top-level container for a set of posts.
type Continuity struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	CreatorID   uint   `gorm:"not null" json:"creator_id"`

	Creator  User      `gorm:"foreignKey:CreatorID" json:"-"`
	Sections []Section `gorm:"foreignKey:ContinuityID" json:"sections,omitempty"`
}

// Section is an optional ordered sub-grouping of posts within a continuity.
type Section struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ContinuityID uint   `gorm:"not null;index" json:"continuity_id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Position     int    `gorm:"not null;default:0" json:"position"`
}
