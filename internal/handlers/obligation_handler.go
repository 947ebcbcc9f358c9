package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/quillforge/continuum-backend/internal/httpx"
	"github.com/quillforge/continuum-backend/internal/service"
	"gorm.io/gorm"
)

type ObligationHandler struct {
	obligations *service.ObligationService
	userService *service.UserService
}

func NewObligationHandler(obligations *service.ObligationService, userService *service.UserService) *ObligationHandler {
	return &ObligationHandler{obligations: obligations, userService: userService}
}

// Owed handles GET /owed?view=active|hidden|hiatused.
func (h *ObligationHandler) Owed(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	view := service.OwedView(c.Query("view", string(service.OwedActive)))
	switch view {
	case service.OwedActive, service.OwedHidden, service.OwedHiatused:
	default:
		return httpx.BadRequest(c, "invalid_view", "Unknown owed view")
	}

	owed, err := h.obligations.Owed(userID, view)
	if err != nil {
		return httpx.Internal(c, "owed_failed")
	}
	return c.JSON(fiber.Map{
		"posts": owed,
		"count": len(owed),
	})
}

func (h *ObligationHandler) OptOut(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}
	if err := h.obligations.OptOut(postID, userID); err != nil {
		return httpx.Internal(c, "opt_out_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ObligationHandler) OptIn(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}
	if err := h.obligations.OptIn(postID, userID); err != nil {
		return httpx.Internal(c, "opt_in_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type inviteInput struct {
	UserID uint `json:"user_id"`
}

func (h *ObligationHandler) Invite(c *fiber.Ctx) error {
	inviterID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}

	var input inviteInput
	if err := c.BodyParser(&input); err != nil || input.UserID == 0 {
		return httpx.BadRequest(c, "missing_user_id", "user_id is required")
	}

	if err := h.obligations.Invite(postID, inviterID, input.UserID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return httpx.NotFound(c, "post_not_found", "Post not found")
		case errors.Is(err, service.ErrNotAuthorLocked):
			return httpx.BadRequest(c, "not_author_locked", "Post is not author-locked")
		case errors.Is(err, service.ErrNotAnAuthor):
			return httpx.Forbidden(c, "not_an_author", "Only authors can invite")
		default:
			return httpx.Internal(c, "invite_failed")
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ObligationHandler) Uninvite(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	postID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_post_id", "Invalid post id")
	}
	targetID, err := httpx.ParamUint(c, "user_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}
	if err := h.obligations.Uninvite(postID, targetID); err != nil {
		return httpx.Internal(c, "uninvite_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type owedPreferenceInput struct {
	ShowHiatused bool `json:"show_hiatused"`
}

// SetOwedPreference flips whether hiatused posts show in the default owed
// view.
func (h *ObligationHandler) SetOwedPreference(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	var input owedPreferenceInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if err := h.userService.SetShowHiatusedOwed(userID, input.ShowHiatused); err != nil {
		return httpx.Internal(c, "preference_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
