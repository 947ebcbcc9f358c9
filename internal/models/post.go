package models

import (
	"time"

	"gorm.io/gorm"
)

type PostStatus string

const (
	StatusActive    PostStatus = "active"
	StatusComplete  PostStatus = "complete"
	StatusHiatus    PostStatus = "hiatus"
	StatusAbandoned PostStatus = "abandoned"
)

type PrivacyLevel string

const (
	PrivacyPublic     PrivacyLevel = "public"
	PrivacyAccessList PrivacyLevel = "access_list"
	PrivacyPrivate    PrivacyLevel = "private"
)

type Post struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ContinuityID uint  `gorm:"not null;index" json:"continuity_id"`
	SectionID    *uint `gorm:"index" json:"section_id"`
	Position     int   `gorm:"not null;default:0" json:"position"`

	CreatorID uint   `gorm:"not null;index" json:"creator_id"`
	Creator   User   `gorm:"foreignKey:CreatorID" json:"-"`
	Subject   string `gorm:"size:255;not null" json:"subject"`
	Content   string `gorm:"type:text" json:"content"`

	Status  PostStatus   `gorm:"type:varchar(20);default:'active';index" json:"status"`
	Privacy PrivacyLevel `gorm:"type:varchar(20);default:'public';index" json:"privacy"`

	// AuthorsLocked restricts new contributors to invited users.
	AuthorsLocked bool `gorm:"default:false" json:"authors_locked"`

	// TaggedAt is the last-activity timestamp: the newest reply's CreatedAt,
	// or the post's own CreatedAt if no replies exist. Maintained on every
	// reply create/update/destroy/restore.
	TaggedAt time.Time `gorm:"not null;index" json:"tagged_at"`

	// EditedAt tracks content and status edits to the post itself, which
	// count as new content for unread resolution.
	EditedAt time.Time `gorm:"not null" json:"edited_at"`

	Authors  []PostAuthor     `gorm:"foreignKey:PostID" json:"authors,omitempty"`
	Warnings []ContentWarning `gorm:"foreignKey:PostID" json:"warnings,omitempty"`
}

type Reply struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PostID uint `gorm:"not null;index" json:"post_id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Content string `gorm:"type:text;not null" json:"content"`

	// ReplyOrder is dense and zero-based per post, reassigned on
	// insert/delete/restore.
	ReplyOrder int `gorm:"not null;index:idx_post_order" json:"reply_order"`
}

// PostAuthor tracks a user's contribution state on a post and their
// replies-owed accounting. One record per (post, user).
type PostAuthor struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PostID uint `gorm:"not null;uniqueIndex:idx_post_user" json:"post_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_post_user;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// CanOwe is false when the user opted out of replies-owed for this post.
	CanOwe bool `gorm:"default:true" json:"can_owe"`

	// Joined becomes true once the user has contributed (post creation or a
	// reply). Joining is permanent under un-invite; only deleting the user's
	// last reply in an open post reverts it.
	Joined   bool       `gorm:"default:false;index" json:"joined"`
	JoinedAt *time.Time `json:"joined_at"`

	InvitedByID *uint      `json:"invited_by"`
	InvitedAt   *time.Time `json:"invited_at"`
}

// ContentWarning is a warning label attached to a post. Adding a new one
// resets warning visibility for every user who had hidden warnings there.
type ContentWarning struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	PostID uint   `gorm:"not null;uniqueIndex:idx_post_label" json:"post_id"`
	Label  string `gorm:"size:100;not null;uniqueIndex:idx_post_label" json:"label"`
}

type PostResponse struct {
	ID           uint         `json:"id"`
	ContinuityID uint         `json:"continuity_id"`
	SectionID    *uint        `json:"section_id"`
	CreatorID    uint         `json:"creator_id"`
	Subject      string       `json:"subject"`
	Status       PostStatus   `json:"status"`
	Privacy      PrivacyLevel `json:"privacy"`
	TaggedAt     time.Time    `json:"tagged_at"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (p *Post) ToResponse() PostResponse {
	return PostResponse{
		ID:           p.ID,
		ContinuityID: p.ContinuityID,
		SectionID:    p.SectionID,
		CreatorID:    p.CreatorID,
		Subject:      p.Subject,
		Status:       p.Status,
		Privacy:      p.Privacy,
		TaggedAt:     p.TaggedAt,
		CreatedAt:    p.CreatedAt,
	}
}
