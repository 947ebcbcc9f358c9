package service

import (
	"errors"
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
	"gorm.io/gorm"
)

// OwedView selects which slice of the replies-owed worklist to return.
type OwedView string

const (
	// OwedActive is the default worklist: posts where someone else moved last.
	OwedActive OwedView = "active"
	// OwedHidden lists posts the user opted out of owing on.
	OwedHidden OwedView = "hidden"
	// OwedHiatused lists only the hiatused subset of otherwise-owed posts.
	OwedHiatused OwedView = "hiatused"
)

// DefaultStalenessWindow is how long a post can sit without activity before
// it is treated as hiatused for owed filtering, matching an explicit hiatus.
const DefaultStalenessWindow = 30 * 24 * time.Hour

// ObligationService tracks the per-(post, author) obligation state machine
// and computes the replies-owed worklist.
type ObligationService struct {
	authorRepo repository.PostAuthorRepositoryInterface
	postRepo   repository.PostRepositoryInterface
	userRepo   repository.UserRepositoryInterface
	blocks     *BlockService
	staleness  time.Duration
}

func NewObligationService(
	authorRepo repository.PostAuthorRepositoryInterface,
	postRepo repository.PostRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	blocks *BlockService,
) *ObligationService {
	return &ObligationService{
		authorRepo: authorRepo,
		postRepo:   postRepo,
		userRepo:   userRepo,
		blocks:     blocks,
		staleness:  DefaultStalenessWindow,
	}
}

// SetStalenessWindow overrides the auto-hiatus window.
func (s *ObligationService) SetStalenessWindow(d time.Duration) {
	s.staleness = d
}

// OwedPost is one entry of the replies-owed worklist.
type OwedPost struct {
	PostID   uint              `json:"post_id"`
	Subject  string            `json:"subject"`
	Status   models.PostStatus `json:"status"`
	TaggedAt time.Time         `json:"tagged_at"`
	Hiatused bool              `json:"hiatused"`
}

// Owed computes the replies-owed worklist for a user. A post is owed when
// the user is a joined author with can_owe, the post is still open, the most
// recent contribution was by someone else, and the post is not ignored or
// block-hidden. Hiatused posts (explicit or stale) follow the user's
// preference in the active view.
func (s *ObligationService) Owed(userID uint, view OwedView) ([]OwedPost, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.authorRepo.ListOwedRows(userID)
	if err != nil {
		return nil, err
	}
	hidden, err := s.blocks.HiddenSet(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	owed := make([]OwedPost, 0, len(rows))
	for _, row := range rows {
		if row.Status == models.StatusComplete || row.Status == models.StatusAbandoned {
			continue
		}
		if row.PostIgnored || row.ContinuityIgnored || hidden[row.PostID] {
			continue
		}
		if row.LastContributorID == userID {
			continue
		}

		hiatused := row.Status == models.StatusHiatus || now.Sub(row.TaggedAt) >= s.staleness

		switch view {
		case OwedHidden:
			if row.CanOwe {
				continue
			}
		case OwedHiatused:
			if !row.CanOwe || !hiatused {
				continue
			}
		default: // OwedActive
			if !row.CanOwe {
				continue
			}
			if hiatused && !user.ShowHiatusedOwed {
				continue
			}
		}

		owed = append(owed, OwedPost{
			PostID:   row.PostID,
			Subject:  row.Subject,
			Status:   row.Status,
			TaggedAt: row.TaggedAt,
			Hiatused: hiatused,
		})
	}
	return owed, nil
}

// OptOut removes the user from replies-owed accounting for one post without
// leaving authorship. A no-op when the user is not an author. An unjoined
// record with no owing value left is dropped entirely.
func (s *ObligationService) OptOut(postID, userID uint) error {
	author, err := s.authorRepo.Find(postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !author.Joined {
		return s.authorRepo.Delete(postID, userID)
	}
	author.CanOwe = false
	return s.authorRepo.Update(author)
}

// OptIn reverses an opt-out. A no-op for non-authors.
func (s *ObligationService) OptIn(postID, userID uint) error {
	author, err := s.authorRepo.Find(postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if author.CanOwe {
		return nil
	}
	author.CanOwe = true
	return s.authorRepo.Update(author)
}

// Invite adds a user to the unjoined-author list of an author-locked post.
// Only the post creator or a joined coauthor may invite. Idempotent for
// already-present users.
func (s *ObligationService) Invite(postID, inviterID, inviteeID uint) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}
	if !post.AuthorsLocked {
		return ErrNotAuthorLocked
	}

	if post.CreatorID != inviterID {
		inviter, err := s.authorRepo.Find(postID, inviterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAnAuthor
			}
			return err
		}
		if !inviter.Joined {
			return ErrNotAnAuthor
		}
	}

	if _, err := s.authorRepo.Find(postID, inviteeID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now()
	if err := s.authorRepo.Create(&models.PostAuthor{
		PostID:      postID,
		UserID:      inviteeID,
		CanOwe:      true,
		Joined:      false,
		InvitedByID: &inviterID,
		InvitedAt:   &now,
	}); err != nil {
		return err
	}
	return s.blocks.InvalidateForPostAuthors(postID)
}

// Uninvite removes a not-yet-joined user from the author list. Joined
// authors are never removed this way; joining is permanent.
func (s *ObligationService) Uninvite(postID, userID uint) error {
	author, err := s.authorRepo.Find(postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if author.Joined {
		return nil
	}
	if err := s.authorRepo.Delete(postID, userID); err != nil {
		return err
	}
	return s.blocks.InvalidateForPostAuthors(postID)
}
