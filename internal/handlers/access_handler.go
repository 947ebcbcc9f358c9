package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quillforge/continuum-backend/internal/httpx"
	"github.com/quillforge/continuum-backend/internal/service"
	"github.com/quillforge/continuum-backend/internal/validation"
)

type AccessHandler struct {
	visibility *service.VisibilityService
}

func NewAccessHandler(visibility *service.VisibilityService) *AccessHandler {
	return &AccessHandler{visibility: visibility}
}

// VisiblePosts handles GET /access/visible.
func (h *AccessHandler) VisiblePosts(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	ids, err := h.visibility.VisiblePosts(userID)
	if err != nil {
		return httpx.Internal(c, "visible_posts_failed")
	}
	return c.JSON(fiber.Map{"post_ids": ids, "count": len(ids)})
}

type viewersInput struct {
	UserIDs []uint `json:"user_ids"`
}

func (h *AccessHandler) SetViewers(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}

	var input viewersInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if err := h.visibility.SetViewers(postID, input.UserIDs); err != nil {
		return httpx.Internal(c, "set_viewers_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type circleInput struct {
	Name string `json:"name"`
}

func (h *AccessHandler) CreateCircle(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input circleInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.Name = validation.TrimAndLimit(input.Name, 100)
	if input.Name == "" {
		return httpx.BadRequest(c, "missing_name", "Name is required")
	}

	circle, err := h.visibility.CreateCircle(input.Name, userID)
	if err != nil {
		return httpx.Internal(c, "create_circle_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(circle)
}

type memberInput struct {
	UserID uint `json:"user_id"`
}

func (h *AccessHandler) AddCircleMember(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	circleID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_circle_id", "Invalid circle id")
	}

	var input memberInput
	if err := c.BodyParser(&input); err != nil || input.UserID == 0 {
		return httpx.BadRequest(c, "missing_user_id", "user_id is required")
	}
	if err := h.visibility.AddCircleMember(circleID, input.UserID); err != nil {
		return httpx.Internal(c, "add_member_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AccessHandler) RemoveCircleMember(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	circleID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_circle_id", "Invalid circle id")
	}
	memberID, err := httpx.ParamUint(c, "user_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}
	if err := h.visibility.RemoveCircleMember(circleID, memberID); err != nil {
		return httpx.Internal(c, "remove_member_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AccessHandler) AttachCircle(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}
	circleID, err := httpx.ParamUint(c, "circle_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_circle_id", "Invalid circle id")
	}
	if err := h.visibility.AttachCircle(postID, circleID); err != nil {
		return httpx.Internal(c, "attach_circle_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AccessHandler) DetachCircle(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}
	circleID, err := httpx.ParamUint(c, "circle_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_circle_id", "Invalid circle id")
	}
	if err := h.visibility.DetachCircle(postID, circleID); err != nil {
		return httpx.Internal(c, "detach_circle_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
