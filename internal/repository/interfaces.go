package repository

import (
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	Update(user *models.User) error
	SetShowHiatusedOwed(userID uint, show bool) error
}

// ContinuityRepositoryInterface defines the contract for continuity operations
type ContinuityRepositoryInterface interface {
	Create(continuity *models.Continuity) error
	FindByID(id uint) (*models.Continuity, error)
	CreateSection(section *models.Section) error
}

// PostRepositoryInterface defines the contract for post repository operations
type PostRepositoryInterface interface {
	Create(post *models.Post) error
	FindByID(id uint) (*models.Post, error)
	UpdateTaggedAt(postID uint, taggedAt time.Time) error
	SetStatus(postID uint, status models.PostStatus, editedAt time.Time) error
	SetPrivacy(postID uint, privacy models.PrivacyLevel) error
	SetAuthorsLocked(postID uint, locked bool) error
	AddWarning(postID uint, label string) (bool, error)
	ListWarnings(postID uint) ([]models.ContentWarning, error)
	ListUnreadCandidates(userID uint, openedOnly bool, limit int) ([]UnreadCandidateRow, error)
}

// ReplyRepositoryInterface defines the contract for reply repository operations
type ReplyRepositoryInterface interface {
	Create(reply *models.Reply) error
	Update(reply *models.Reply) error
	FindByID(id uint) (*models.Reply, error)
	FindByIDUnscoped(id uint) (*models.Reply, error)
	ListByPost(postID uint) ([]models.Reply, error)
	CountActive(postID uint) (int64, error)
	CountByUser(postID, userID uint) (int64, error)
	FindFirstAfter(postID uint, after time.Time) (*models.Reply, error)
	FindNewest(postID uint) (*models.Reply, error)
	SoftDelete(id uint) error
	Restore(id uint) error
	CloseOrderGap(postID uint, fromOrder int) error
	ReorderByCreatedAt(postID uint) error
}

// PostAuthorRepositoryInterface defines the contract for obligation records
type PostAuthorRepositoryInterface interface {
	Find(postID, userID uint) (*models.PostAuthor, error)
	Create(author *models.PostAuthor) error
	Update(author *models.PostAuthor) error
	Delete(postID, userID uint) error
	ListByPost(postID uint) ([]models.PostAuthor, error)
	ListOwedRows(userID uint) ([]OwedRow, error)
}

// ReadMarkerRepositoryInterface defines the contract for the view ledger
type ReadMarkerRepositoryInterface interface {
	UpsertRead(userID, targetID uint, kind models.TargetKind, readAt time.Time, force bool) error
	SetIgnored(userID, targetID uint, kind models.TargetKind, ignored bool) error
	SetWarningsHidden(userID, targetID uint, kind models.TargetKind, hidden bool) error
	ResetWarningsHidden(postID uint) error
	Find(userID, targetID uint, kind models.TargetKind) (*models.ReadMarker, error)
	FindPair(userID, postID, continuityID uint) (post *models.ReadMarker, continuity *models.ReadMarker, err error)
}

// BlockRepositoryInterface defines the contract for block relationships
type BlockRepositoryInterface interface {
	Upsert(block *models.Block) error
	Find(blockingUserID, blockedUserID uint) (*models.Block, error)
	Delete(blockingUserID, blockedUserID uint) error
	ListHiddenPostIDs(userID uint) ([]uint, error)
	ListBlockedPostIDs(userID uint) ([]uint, error)
	ListAffectedUserIDs(postID uint) ([]uint, error)
}

// AccessRepositoryInterface defines the contract for viewer grants and circles
type AccessRepositoryInterface interface {
	ListVisiblePostIDs(userID uint) ([]uint, error)
	ListViewerIDs(postID uint) ([]uint, error)
	ReplaceViewers(postID uint, userIDs []uint) error
	AddViewer(postID, userID uint) error
	RemoveViewer(postID, userID uint) error
	CreateCircle(circle *models.AccessCircle) error
	FindCircle(id uint) (*models.AccessCircle, error)
	AddCircleMember(circleID, userID uint) error
	RemoveCircleMember(circleID, userID uint) error
	ListCircleMemberIDs(circleID uint) ([]uint, error)
	AttachCircle(postID, circleID uint) error
	DetachCircle(postID, circleID uint) error
	ListAffectedUserIDs(postID uint) ([]uint, error)
	IsViewer(postID, userID uint) (bool, error)
	IsCircleViewer(postID, userID uint) (bool, error)
}

// RefreshTokenRepositoryInterface defines the contract for refresh token operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	FindValidByHash(tokenHash string) (*models.RefreshToken, error)
	RevokeByHash(tokenHash string) error
}

// RepositorySet bundles the repositories participating in a transactional
// write. Inside UnitOfWork.Do all of them share one transaction.
type RepositorySet struct {
	Users   UserRepositoryInterface
	Posts   PostRepositoryInterface
	Replies ReplyRepositoryInterface
	Authors PostAuthorRepositoryInterface
	Markers ReadMarkerRepositoryInterface
	Blocks  BlockRepositoryInterface
	Access  AccessRepositoryInterface
}

// UnitOfWork runs a function against a RepositorySet inside a single
// database transaction. A returned error rolls the whole write back, so no
// partial marker/obligation state is ever retained.
type UnitOfWork interface {
	Do(fn func(r RepositorySet) error) error
}
