package service

import (
	"errors"

	"github.com/quillforge/continuum-backend/internal/cache"
	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
	"gorm.io/gorm"
)

// VisibilityService derives which access-restricted posts each user may
// see. The derivation is a pure recomputation from viewer grants and circle
// memberships; the cache layer only memoizes it between invalidations.
type VisibilityService struct {
	accessRepo repository.AccessRepositoryInterface
	authorRepo repository.PostAuthorRepositoryInterface
	uow        repository.UnitOfWork
	visCache   *cache.VisibilityCache
}

func NewVisibilityService(
	accessRepo repository.AccessRepositoryInterface,
	authorRepo repository.PostAuthorRepositoryInterface,
	uow repository.UnitOfWork,
	visCache *cache.VisibilityCache,
) *VisibilityService {
	return &VisibilityService{
		accessRepo: accessRepo,
		authorRepo: authorRepo,
		uow:        uow,
		visCache:   visCache,
	}
}

// VisiblePosts returns the cached set of access-restricted post IDs visible
// to the user, populating lazily on first access. Population always reads
// authoritative state fresh, so a repopulation can never resurrect a value
// computed before the invalidating write.
func (s *VisibilityService) VisiblePosts(userID uint) ([]uint, error) {
	if ids, ok := s.visCache.Get(userID); ok {
		return ids, nil
	}
	ids, err := s.accessRepo.ListVisiblePostIDs(userID)
	if err != nil {
		return nil, err
	}
	_ = s.visCache.Set(userID, ids)
	return ids, nil
}

// IsVisible is the capability check for viewing a post, switching on the
// privacy level rather than dispatching dynamically.
func (s *VisibilityService) IsVisible(userID uint, post *models.Post) (bool, error) {
	switch post.Privacy {
	case models.PrivacyPublic:
		return true, nil
	case models.PrivacyPrivate:
		return s.isAuthor(userID, post)
	case models.PrivacyAccessList:
		if ok, err := s.isAuthor(userID, post); err != nil || ok {
			return ok, err
		}
		visible, err := s.VisiblePosts(userID)
		if err != nil {
			return false, err
		}
		for _, id := range visible {
			if id == post.ID {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

func (s *VisibilityService) isAuthor(userID uint, post *models.Post) (bool, error) {
	if post.CreatorID == userID {
		return true, nil
	}
	author, err := s.authorRepo.Find(post.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return author.Joined, nil
}

// SetViewers replaces a post's direct viewer list inside a transaction and
// then invalidates exactly the users whose visibility changed: the
// symmetric difference between the old and new viewer sets.
func (s *VisibilityService) SetViewers(postID uint, userIDs []uint) error {
	var affected []uint
	err := s.uow.Do(func(r repository.RepositorySet) error {
		old, err := r.Access.ListViewerIDs(postID)
		if err != nil {
			return err
		}
		if err := r.Access.ReplaceViewers(postID, userIDs); err != nil {
			return err
		}
		affected = symmetricDiff(old, userIDs)
		return nil
	})
	if err != nil {
		return err
	}
	return s.visCache.InvalidateMany(affected)
}

// AddViewer grants one user direct viewer access.
func (s *VisibilityService) AddViewer(postID, userID uint) error {
	if err := s.accessRepo.AddViewer(postID, userID); err != nil {
		return err
	}
	return s.visCache.Invalidate(userID)
}

// RemoveViewer revokes one user's direct viewer access.
func (s *VisibilityService) RemoveViewer(postID, userID uint) error {
	if err := s.accessRepo.RemoveViewer(postID, userID); err != nil {
		return err
	}
	return s.visCache.Invalidate(userID)
}

// AttachCircle attaches an access circle to a post and invalidates every
// current member of that circle.
func (s *VisibilityService) AttachCircle(postID, circleID uint) error {
	if err := s.accessRepo.AttachCircle(postID, circleID); err != nil {
		return err
	}
	members, err := s.accessRepo.ListCircleMemberIDs(circleID)
	if err != nil {
		return err
	}
	return s.visCache.InvalidateMany(members)
}

// DetachCircle detaches a circle, invalidating its members.
func (s *VisibilityService) DetachCircle(postID, circleID uint) error {
	members, err := s.accessRepo.ListCircleMemberIDs(circleID)
	if err != nil {
		return err
	}
	if err := s.accessRepo.DetachCircle(postID, circleID); err != nil {
		return err
	}
	return s.visCache.InvalidateMany(members)
}

// AddCircleMember adds a user to a circle; only that user's visibility can
// change, for every post the circle is attached to.
func (s *VisibilityService) AddCircleMember(circleID, userID uint) error {
	if err := s.accessRepo.AddCircleMember(circleID, userID); err != nil {
		return err
	}
	return s.visCache.Invalidate(userID)
}

// RemoveCircleMember removes a user from a circle.
func (s *VisibilityService) RemoveCircleMember(circleID, userID uint) error {
	if err := s.accessRepo.RemoveCircleMember(circleID, userID); err != nil {
		return err
	}
	return s.visCache.Invalidate(userID)
}

// CreateCircle creates a new access circle.
func (s *VisibilityService) CreateCircle(name string, ownerID uint) (*models.AccessCircle, error) {
	circle := &models.AccessCircle{Name: name, OwnerID: ownerID}
	if err := s.accessRepo.CreateCircle(circle); err != nil {
		return nil, err
	}
	return circle, nil
}

// InvalidateForPost drops cached sets for everyone the post's access list
// could have granted visibility to. Used when a post's privacy level flips
// to or from access-restricted.
func (s *VisibilityService) InvalidateForPost(postID uint) error {
	userIDs, err := s.accessRepo.ListAffectedUserIDs(postID)
	if err != nil {
		return err
	}
	return s.visCache.InvalidateMany(userIDs)
}

// symmetricDiff returns the IDs present in exactly one of the two slices.
func symmetricDiff(a, b []uint) []uint {
	inA := toSet(a)
	inB := toSet(b)
	var diff []uint
	for _, id := range a {
		if !inB[id] {
			diff = append(diff, id)
		}
	}
	for _, id := range b {
		if !inA[id] {
			diff = append(diff, id)
		}
	}
	return diff
}
