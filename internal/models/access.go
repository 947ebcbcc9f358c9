package models

import (
	"time"

	"gorm.io/gorm"
)

// AccessCircle is a named, reusable group of users that can be attached to
// access-restricted posts to grant viewer access.
type AccessCircle struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `gorm:"size:100;not null" json:"name"`
	OwnerID uint   `gorm:"not null;index" json:"owner_id"`

	Members []CircleMember `gorm:"foreignKey:CircleID" json:"members,omitempty"`
}

type CircleMember struct {
	CircleID uint      `gorm:"primaryKey" json:"circle_id"`
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// PostViewer is a direct viewer grant on an access-restricted post.
type PostViewer struct {
	PostID    uint      `gorm:"primaryKey" json:"post_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	GrantedAt time.Time `gorm:"autoCreateTime" json:"granted_at"`
}

// PostCircle attaches an access circle to a post.
type PostCircle struct {
	PostID   uint `gorm:"primaryKey" json:"post_id"`
	CircleID uint `gorm:"primaryKey" json:"circle_id"`
}
