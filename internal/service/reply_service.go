package service

import (
	"errors"
	"fmt"

	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
	"gorm.io/gorm"
)

// ReplyService owns the reply lifecycle: ordering, the tagged_at invariant,
// and the join transitions of the obligation state machine that replies
// trigger.
type ReplyService struct {
	uow    repository.UnitOfWork
	blocks *BlockService
}

func NewReplyService(uow repository.UnitOfWork, blocks *BlockService) *ReplyService {
	return &ReplyService{uow: uow, blocks: blocks}
}

type AddReplyInput struct {
	PostID  uint   `json:"post_id"`
	Content string `json:"content"`
}

// AddReply appends a reply to a post, joins the author if this is their
// first contribution, and maintains tagged_at. On an author-locked post only
// invited or joined authors may reply.
func (s *ReplyService) AddReply(userID uint, input AddReplyInput) (*models.Reply, error) {
	var reply *models.Reply
	authorListChanged := false

	err := s.uow.Do(func(r repository.RepositorySet) error {
		post, err := r.Posts.FindByID(input.PostID)
		if err != nil {
			return err
		}

		author, err := r.Authors.Find(post.ID, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if post.AuthorsLocked && author == nil {
			return ErrPostLocked
		}

		count, err := r.Replies.CountActive(post.ID)
		if err != nil {
			return err
		}
		reply = &models.Reply{
			PostID:     post.ID,
			UserID:     userID,
			Content:    input.Content,
			ReplyOrder: int(count),
		}
		if err := r.Replies.Create(reply); err != nil {
			return err
		}

		if author == nil {
			joinedAt := reply.CreatedAt
			if err := r.Authors.Create(&models.PostAuthor{
				PostID:   post.ID,
				UserID:   userID,
				CanOwe:   true,
				Joined:   true,
				JoinedAt: &joinedAt,
			}); err != nil {
				return err
			}
			authorListChanged = true
		} else if !author.Joined {
			joinedAt := reply.CreatedAt
			author.Joined = true
			author.JoinedAt = &joinedAt
			author.InvitedByID = nil
			author.InvitedAt = nil
			if err := r.Authors.Update(author); err != nil {
				return err
			}
			authorListChanged = true
		}

		return retagPost(r, post)
	})
	if err != nil {
		return nil, err
	}

	if authorListChanged {
		// Joining changes the author list, so block caches derived from it
		// go stale for everyone with a block relation to any author.
		if err := s.blocks.InvalidateForPostAuthors(input.PostID); err != nil {
			return nil, err
		}
	}
	return reply, nil
}

// EditReply updates a reply's content and re-verifies the tagged_at
// invariant.
func (s *ReplyService) EditReply(replyID uint, content string) (*models.Reply, error) {
	var reply *models.Reply
	err := s.uow.Do(func(r repository.RepositorySet) error {
		var err error
		reply, err = r.Replies.FindByID(replyID)
		if err != nil {
			return err
		}
		reply.Content = content
		if err := r.Replies.Update(reply); err != nil {
			return err
		}
		post, err := r.Posts.FindByID(reply.PostID)
		if err != nil {
			return err
		}
		return retagPost(r, post)
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// DeleteReply soft-deletes a reply, closes the order gap, recomputes
// tagged_at from the remaining replies, and reverts the author's joined
// state when their last reply in an open post is destroyed.
func (s *ReplyService) DeleteReply(replyID uint) error {
	var affected []uint
	authorListChanged := false

	err := s.uow.Do(func(r repository.RepositorySet) error {
		reply, err := r.Replies.FindByID(replyID)
		if err != nil {
			return err
		}
		post, err := r.Posts.FindByID(reply.PostID)
		if err != nil {
			return err
		}

		if err := r.Replies.SoftDelete(reply.ID); err != nil {
			return err
		}
		if err := r.Replies.CloseOrderGap(post.ID, reply.ReplyOrder); err != nil {
			return err
		}

		remaining, err := r.Replies.CountByUser(post.ID, reply.UserID)
		if err != nil {
			return err
		}
		if remaining == 0 && !post.AuthorsLocked && post.CreatorID != reply.UserID {
			author, err := r.Authors.Find(post.ID, reply.UserID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if author != nil {
				// Capture the affected users before the record goes away:
				// afterwards the departing author no longer links their
				// blockers to this post.
				affected, err = r.Blocks.ListAffectedUserIDs(post.ID)
				if err != nil {
					return err
				}
				if err := r.Authors.Delete(post.ID, reply.UserID); err != nil {
					return err
				}
				authorListChanged = true
			}
		}

		return retagPost(r, post)
	})
	if err != nil {
		return err
	}

	if authorListChanged {
		return s.blocks.InvalidateUsers(affected)
	}
	return nil
}

// RestoreReply undoes a soft delete, keeping the reply's original created_at
// so ordering and tagged_at are reproducible, and re-joins the author.
func (s *ReplyService) RestoreReply(replyID uint) error {
	var postID uint
	authorListChanged := false

	err := s.uow.Do(func(r repository.RepositorySet) error {
		reply, err := r.Replies.FindByIDUnscoped(replyID)
		if err != nil {
			return err
		}
		if !reply.DeletedAt.Valid {
			return nil // not deleted, nothing to restore
		}
		postID = reply.PostID

		if err := r.Replies.Restore(reply.ID); err != nil {
			return err
		}
		if err := r.Replies.ReorderByCreatedAt(reply.PostID); err != nil {
			return err
		}

		post, err := r.Posts.FindByID(reply.PostID)
		if err != nil {
			return err
		}

		author, err := r.Authors.Find(post.ID, reply.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if author == nil {
			joinedAt := reply.CreatedAt
			if err := r.Authors.Create(&models.PostAuthor{
				PostID:   post.ID,
				UserID:   reply.UserID,
				CanOwe:   true,
				Joined:   true,
				JoinedAt: &joinedAt,
			}); err != nil {
				return err
			}
			authorListChanged = true
		} else if !author.Joined {
			joinedAt := reply.CreatedAt
			author.Joined = true
			author.JoinedAt = &joinedAt
			if err := r.Authors.Update(author); err != nil {
				return err
			}
			authorListChanged = true
		}

		return retagPost(r, post)
	})
	if err != nil {
		return err
	}

	if authorListChanged {
		return s.blocks.InvalidateForPostAuthors(postID)
	}
	return nil
}

// retagPost recomputes tagged_at from the post's live replies and verifies
// the invariant tagged_at == max(post.created_at, newest reply created_at).
func retagPost(r repository.RepositorySet, post *models.Post) error {
	newest, err := r.Replies.FindNewest(post.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	taggedAt := models.LastActivity(post.CreatedAt, newest)

	if err := r.Posts.UpdateTaggedAt(post.ID, taggedAt); err != nil {
		return err
	}
	if newest != nil && taggedAt.Before(newest.CreatedAt) {
		return &ConsistencyError{
			Msg: fmt.Sprintf("post %d tagged_at older than newest reply %d", post.ID, newest.ID),
		}
	}
	post.TaggedAt = taggedAt
	return nil
}
