package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/quillforge/continuum-backend/internal/httpx"
	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/service"
	"github.com/quillforge/continuum-backend/internal/validation"
	"gorm.io/gorm"
)

type PostHandler struct {
	postService  *service.PostService
	replyService *service.ReplyService
	visibility   *service.VisibilityService
	postRepo     PostFinder
}

// PostFinder is the read-side lookup handlers need before capability checks.
type PostFinder interface {
	FindByID(id uint) (*models.Post, error)
}

func NewPostHandler(
	postService *service.PostService,
	replyService *service.ReplyService,
	visibility *service.VisibilityService,
	postRepo PostFinder,
) *PostHandler {
	return &PostHandler{
		postService:  postService,
		replyService: replyService,
		visibility:   visibility,
		postRepo:     postRepo,
	}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.CreatePostInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.Subject = validation.TrimAndLimit(input.Subject, 255)
	if input.Subject == "" {
		return httpx.BadRequest(c, "missing_subject", "Subject is required")
	}
	input.Content = validation.TrimAndLimit(input.Content, validation.MaxContentLength())

	post, err := h.postService.CreatePost(userID, input)
	if err != nil {
		return httpx.Internal(c, "create_post_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(post.ToResponse())
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}

	post, err := h.postRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "post_not_found", "Post not found")
		}
		return httpx.Internal(c, "fetch_post_failed")
	}

	visible, err := h.visibility.IsVisible(userID, post)
	if err != nil {
		return httpx.Internal(c, "visibility_check_failed")
	}
	if !visible {
		// Access-restricted posts 404 rather than 403 to avoid leaking
		// their existence.
		return httpx.NotFound(c, "post_not_found", "Post not found")
	}
	return c.JSON(post.ToResponse())
}

func (h *PostHandler) AddReply(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}

	var input service.AddReplyInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.PostID = postID
	input.Content = validation.TrimAndLimit(input.Content, validation.MaxContentLength())
	if input.Content == "" {
		return httpx.BadRequest(c, "missing_content", "Content is required")
	}

	reply, err := h.replyService.AddReply(userID, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "post_not_found", "Post not found")
		}
		if errors.Is(err, service.ErrPostLocked) {
			return httpx.Forbidden(c, "post_locked", "Post is locked to its authors")
		}
		return httpx.Internal(c, "add_reply_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

func (h *PostHandler) DeleteReply(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	replyID, err := httpx.ParamUint(c, "reply_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_reply_id", "Invalid reply id")
	}
	if err := h.replyService.DeleteReply(replyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "reply_not_found", "Reply not found")
		}
		return httpx.Internal(c, "delete_reply_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PostHandler) RestoreReply(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	replyID, err := httpx.ParamUint(c, "reply_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_reply_id", "Invalid reply id")
	}
	if err := h.replyService.RestoreReply(replyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "reply_not_found", "Reply not found")
		}
		return httpx.Internal(c, "restore_reply_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type statusInput struct {
	Status models.PostStatus `json:"status"`
}

func (h *PostHandler) SetStatus(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}

	var input statusInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	switch input.Status {
	case models.StatusActive, models.StatusComplete, models.StatusHiatus, models.StatusAbandoned:
	default:
		return httpx.BadRequest(c, "invalid_status", "Unknown status")
	}

	if err := h.postService.SetStatus(postID, input.Status); err != nil {
		return httpx.Internal(c, "set_status_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type lockInput struct {
	Locked bool `json:"locked"`
}

func (h *PostHandler) SetAuthorsLocked(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}

	var input lockInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if err := h.postService.SetAuthorsLocked(postID, input.Locked); err != nil {
		return httpx.Internal(c, "set_lock_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type warningInput struct {
	Label string `json:"label"`
}

func (h *PostHandler) AddWarning(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}

	var input warningInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if !validation.ValidateWarningLabel(input.Label) {
		return httpx.BadRequest(c, "invalid_label", "Invalid warning label")
	}

	if err := h.postService.AddWarning(postID, validation.NormalizeWarningLabel(input.Label)); err != nil {
		return httpx.Internal(c, "add_warning_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type privacyInput struct {
	Privacy models.PrivacyLevel `json:"privacy"`
}

func (h *PostHandler) SetPrivacy(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}

	var input privacyInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	switch input.Privacy {
	case models.PrivacyPublic, models.PrivacyAccessList, models.PrivacyPrivate:
	default:
		return httpx.BadRequest(c, "invalid_privacy", "Unknown privacy level")
	}

	if err := h.postService.SetPrivacy(postID, input.Privacy); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "post_not_found", "Post not found")
		}
		return httpx.Internal(c, "set_privacy_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
