package service

import (
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
)

// PostService owns the post lifecycle pieces the core cares about: creation
// (which seeds the creator's obligation record), status and privacy
// transitions, author locking, and content warnings.
type PostService struct {
	uow        repository.UnitOfWork
	postRepo   repository.PostRepositoryInterface
	markerRepo repository.ReadMarkerRepositoryInterface
	blocks     *BlockService
	visibility *VisibilityService
}

func NewPostService(
	uow repository.UnitOfWork,
	postRepo repository.PostRepositoryInterface,
	markerRepo repository.ReadMarkerRepositoryInterface,
	blocks *BlockService,
	visibility *VisibilityService,
) *PostService {
	return &PostService{
		uow:        uow,
		postRepo:   postRepo,
		markerRepo: markerRepo,
		blocks:     blocks,
		visibility: visibility,
	}
}

type CreatePostInput struct {
	ContinuityID  uint                `json:"continuity_id"`
	SectionID     *uint               `json:"section_id"`
	Subject       string              `json:"subject"`
	Content       string              `json:"content"`
	Privacy       models.PrivacyLevel `json:"privacy"`
	AuthorsLocked bool                `json:"authors_locked"`
}

// CreatePost creates a post with tagged_at equal to its creation time and
// joins the creator as its first author.
func (s *PostService) CreatePost(creatorID uint, input CreatePostInput) (*models.Post, error) {
	if input.Privacy == "" {
		input.Privacy = models.PrivacyPublic
	}

	// CreatedAt is pinned to the same instant as TaggedAt and EditedAt, so
	// the tagged_at == max(created_at, newest reply) invariant holds from
	// the very first write instead of waiting for the first retag.
	now := time.Now()
	post := &models.Post{
		CreatedAt:     now,
		ContinuityID:  input.ContinuityID,
		SectionID:     input.SectionID,
		CreatorID:     creatorID,
		Subject:       input.Subject,
		Content:       input.Content,
		Status:        models.StatusActive,
		Privacy:       input.Privacy,
		AuthorsLocked: input.AuthorsLocked,
		TaggedAt:      now,
		EditedAt:      now,
	}

	err := s.uow.Do(func(r repository.RepositorySet) error {
		if err := r.Posts.Create(post); err != nil {
			return err
		}
		joinedAt := post.CreatedAt
		return r.Authors.Create(&models.PostAuthor{
			PostID:   post.ID,
			UserID:   creatorID,
			CanOwe:   true,
			Joined:   true,
			JoinedAt: &joinedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// SetStatus changes a post's status. The edit timestamp moves so the change
// counts as new content for unread resolution.
func (s *PostService) SetStatus(postID uint, status models.PostStatus) error {
	return s.postRepo.SetStatus(postID, status, time.Now())
}

// SetAuthorsLocked toggles the author lock. The author list semantics
// change with it, so block caches derived from authorship are invalidated.
func (s *PostService) SetAuthorsLocked(postID uint, locked bool) error {
	if err := s.postRepo.SetAuthorsLocked(postID, locked); err != nil {
		return err
	}
	return s.blocks.InvalidateForPostAuthors(postID)
}

// AddWarning attaches a content warning. A genuinely new label re-surfaces
// warnings for every user who had hidden them on this post, without moving
// anyone's read position.
func (s *PostService) AddWarning(postID uint, label string) error {
	created, err := s.postRepo.AddWarning(postID, label)
	if err != nil {
		return err
	}
	if created {
		return s.markerRepo.ResetWarningsHidden(postID)
	}
	return nil
}

// SetPrivacy changes the privacy level. Moving to or from access-restricted
// invalidates the cached visible sets of everyone the post's access list
// covers.
func (s *PostService) SetPrivacy(postID uint, privacy models.PrivacyLevel) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}
	if post.Privacy == privacy {
		return nil
	}
	if err := s.postRepo.SetPrivacy(postID, privacy); err != nil {
		return err
	}
	if post.Privacy == models.PrivacyAccessList || privacy == models.PrivacyAccessList {
		return s.visibility.InvalidateForPost(postID)
	}
	return nil
}
