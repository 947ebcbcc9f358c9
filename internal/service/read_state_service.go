package service

import (
	"errors"
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
	"gorm.io/gorm"
)

// ReadStateService is the view ledger and read-state resolver: it owns read
// markers at both granularities and is the only code path that decides
// whether a post is read.
type ReadStateService struct {
	markerRepo repository.ReadMarkerRepositoryInterface
	postRepo   repository.PostRepositoryInterface
	replyRepo  repository.ReplyRepositoryInterface
	blocks     *BlockService
	visibility *VisibilityService
}

func NewReadStateService(
	markerRepo repository.ReadMarkerRepositoryInterface,
	postRepo repository.PostRepositoryInterface,
	replyRepo repository.ReplyRepositoryInterface,
	blocks *BlockService,
	visibility *VisibilityService,
) *ReadStateService {
	return &ReadStateService{
		markerRepo: markerRepo,
		postRepo:   postRepo,
		replyRepo:  replyRepo,
		blocks:     blocks,
		visibility: visibility,
	}
}

// FirstUnread identifies the first unread item in a post. A nil ReplyID
// means the post itself (never opened, or edited since last read).
type FirstUnread struct {
	PostID  uint  `json:"post_id"`
	ReplyID *uint `json:"reply_id"`
}

// UnreadPost is one entry of a user's unread listing.
type UnreadPost struct {
	PostID       uint      `json:"post_id"`
	ContinuityID uint      `json:"continuity_id"`
	Subject      string    `json:"subject"`
	TaggedAt     time.Time `json:"tagged_at"`
	NeverRead    bool      `json:"never_read"`
}

// MarkRead upserts a read marker. Without force, moves backward in time are
// dropped so the marker stays monotonic.
func (s *ReadStateService) MarkRead(userID, targetID uint, kind models.TargetKind, at time.Time, force bool) error {
	if at.IsZero() {
		at = time.Now()
	}
	return s.markerRepo.UpsertRead(userID, targetID, kind, at, force)
}

// MarkUnreadFromReply rewinds the post-level marker to one time unit before
// the given reply, so that reply and everything after it show as unread.
func (s *ReadStateService) MarkUnreadFromReply(userID, replyID uint) error {
	reply, err := s.replyRepo.FindByID(replyID)
	if err != nil {
		return err
	}
	at := reply.CreatedAt.Add(-time.Millisecond)
	return s.markerRepo.UpsertRead(userID, reply.PostID, models.TargetPost, at, true)
}

// Ignore hides a target from unread and owed listings without touching the
// read position. Idempotent.
func (s *ReadStateService) Ignore(userID, targetID uint, kind models.TargetKind) error {
	return s.markerRepo.SetIgnored(userID, targetID, kind, true)
}

func (s *ReadStateService) Unignore(userID, targetID uint, kind models.TargetKind) error {
	return s.markerRepo.SetIgnored(userID, targetID, kind, false)
}

// HideWarnings suppresses a post's content warnings for the user. A new
// warning added to the post later resets this.
func (s *ReadStateService) HideWarnings(userID, postID uint) error {
	return s.markerRepo.SetWarningsHidden(userID, postID, models.TargetPost, true)
}

// LastRead resolves the user's effective read position on a post: the newer
// of the post-level and continuity-level markers, nil when neither exists.
func (s *ReadStateService) LastRead(userID uint, post *models.Post) (*time.Time, error) {
	postMarker, continuityMarker, err := s.markerRepo.FindPair(userID, post.ID, post.ContinuityID)
	if err != nil {
		return nil, err
	}
	var postReadAt, continuityReadAt *time.Time
	if postMarker != nil {
		postReadAt = postMarker.ReadAt
	}
	if continuityMarker != nil {
		continuityReadAt = continuityMarker.ReadAt
	}
	return newerOf(postReadAt, continuityReadAt), nil
}

// FirstUnreadFor returns the first unread item in a post for the user, or
// nil when the post is fully read. Post edits (status changes touch
// edited_at) count as new content.
func (s *ReadStateService) FirstUnreadFor(userID uint, post *models.Post) (*FirstUnread, error) {
	lastRead, err := s.LastRead(userID, post)
	if err != nil {
		return nil, err
	}
	if lastRead == nil {
		return &FirstUnread{PostID: post.ID}, nil
	}

	reply, err := s.replyRepo.FindFirstAfter(post.ID, *lastRead)
	if err == nil {
		return &FirstUnread{PostID: post.ID, ReplyID: &reply.ID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if post.EditedAt.After(*lastRead) {
		return &FirstUnread{PostID: post.ID}, nil
	}
	return nil, nil
}

// UnreadFor lists posts with unread content for the user, newest activity
// first, skipping posts the user may not view as well as ignored targets and
// block-hidden posts. With openedOnly the listing is restricted to posts the
// user has a post-level marker for.
func (s *ReadStateService) UnreadFor(userID uint, openedOnly bool, limit int) ([]UnreadPost, error) {
	rows, err := s.postRepo.ListUnreadCandidates(userID, openedOnly, limit)
	if err != nil {
		return nil, err
	}

	visibleIDs, err := s.visibility.VisiblePosts(userID)
	if err != nil {
		return nil, err
	}
	visible := toSet(visibleIDs)

	hidden, err := s.blocks.HiddenSet(userID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blocks.BlockedSet(userID)
	if err != nil {
		return nil, err
	}

	unread := make([]UnreadPost, 0, len(rows))
	for _, row := range rows {
		if !candidateVisible(row, userID, visible) {
			continue
		}
		if hidden[row.PostID] || blocked[row.PostID] {
			continue
		}
		lastRead := newerOf(row.PostReadAt, row.ContinuityReadAt)
		newest := row.TaggedAt
		if row.EditedAt.After(newest) {
			newest = row.EditedAt
		}
		if lastRead != nil && !newest.After(*lastRead) {
			continue
		}
		unread = append(unread, UnreadPost{
			PostID:       row.PostID,
			ContinuityID: row.ContinuityID,
			Subject:      row.Subject,
			TaggedAt:     row.TaggedAt,
			NeverRead:    lastRead == nil,
		})
	}
	return unread, nil
}

// candidateVisible mirrors VisibilityService.IsVisible over the columns the
// candidate query already carries, so restricted posts never reach the feed.
func candidateVisible(row repository.UnreadCandidateRow, userID uint, visible map[uint]bool) bool {
	if row.CreatorID == userID || row.IsAuthor {
		return true
	}
	switch row.Privacy {
	case models.PrivacyPublic:
		return true
	case models.PrivacyAccessList:
		return visible[row.PostID]
	default:
		return false
	}
}

// newerOf picks the more recent of two optional timestamps.
func newerOf(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.After(*a) {
		return b
	}
	return a
}
