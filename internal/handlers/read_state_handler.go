package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/quillforge/continuum-backend/internal/httpx"
	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/service"
	"gorm.io/gorm"
)

type ReadStateHandler struct {
	readState *service.ReadStateService
	postRepo  PostFinder
}

func NewReadStateHandler(readState *service.ReadStateService, postRepo PostFinder) *ReadStateHandler {
	return &ReadStateHandler{readState: readState, postRepo: postRepo}
}

func targetKindFromParam(c *fiber.Ctx) (models.TargetKind, error) {
	switch c.Params("kind") {
	case "posts":
		return models.TargetPost, nil
	case "continuities":
		return models.TargetContinuity, nil
	default:
		return "", errors.New("unknown target kind")
	}
}

type markReadInput struct {
	At *time.Time `json:"at"`
}

// MarkRead handles POST /:kind/:id/read. The optional body timestamp lets a
// client mark read "as of" an older page view; monotonicity still applies.
func (h *ReadStateHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	kind, err := targetKindFromParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_target_kind", "Invalid target kind")
	}
	targetID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_target_id", "Invalid target id")
	}

	var input markReadInput
	_ = c.BodyParser(&input) // empty body means "now"
	at := time.Now()
	if input.At != nil {
		at = *input.At
	}

	if err := h.readState.MarkRead(userID, targetID, kind, at, false); err != nil {
		return httpx.Internal(c, "mark_read_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkUnread handles POST /posts/:id/unread-from/:reply_id, rewinding the
// read marker to just before the given reply.
func (h *ReadStateHandler) MarkUnread(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	replyID, err := httpx.ParamUint(c, "reply_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_reply_id", "Invalid reply id")
	}

	if err := h.readState.MarkUnreadFromReply(userID, replyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "reply_not_found", "Reply not found")
		}
		return httpx.Internal(c, "mark_unread_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReadStateHandler) Ignore(c *fiber.Ctx) error {
	return h.setIgnored(c, true)
}

func (h *ReadStateHandler) Unignore(c *fiber.Ctx) error {
	return h.setIgnored(c, false)
}

func (h *ReadStateHandler) setIgnored(c *fiber.Ctx, ignored bool) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	kind, err := targetKindFromParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_target_kind", "Invalid target kind")
	}
	targetID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_target_id", "Invalid target id")
	}

	var opErr error
	if ignored {
		opErr = h.readState.Ignore(userID, targetID, kind)
	} else {
		opErr = h.readState.Unignore(userID, targetID, kind)
	}
	if opErr != nil {
		return httpx.Internal(c, "ignore_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReadStateHandler) HideWarnings(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}
	if err := h.readState.HideWarnings(userID, postID); err != nil {
		return httpx.Internal(c, "hide_warnings_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FirstUnread handles GET /posts/:id/first-unread.
func (h *ReadStateHandler) FirstUnread(c *fiber.Ctx) error {
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

	first, err := h.readState.FirstUnreadFor(userID, post)
	if err != nil {
		return httpx.Internal(c, "first_unread_failed")
	}
	return c.JSON(fiber.Map{
		"first_unread": first, // null when fully read
	})
}

// Unread handles GET /unread?opened_only=true&limit=100.
func (h *ReadStateHandler) Unread(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	openedOnly := c.Query("opened_only") == "true"
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	unread, err := h.readState.UnreadFor(userID, openedOnly, limit)
	if err != nil {
		return httpx.Internal(c, "unread_failed")
	}
	return c.JSON(fiber.Map{
		"posts": unread,
		"count": len(unread),
	})
}
