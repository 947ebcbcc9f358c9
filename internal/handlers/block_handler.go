package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quillforge/continuum-backend/internal/httpx"
	"github.com/quillforge/continuum-backend/internal/service"
)

type BlockHandler struct {
	blocks *service.BlockService
}

func NewBlockHandler(blocks *service.BlockService) *BlockHandler {
	return &BlockHandler{blocks: blocks}
}

type blockInput struct {
	UserID   uint `json:"user_id"`
	HideMe   bool `json:"hide_me"`
	HideThem bool `json:"hide_them"`
}

func (h *BlockHandler) SetBlock(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input blockInput
	if err := c.BodyParser(&input); err != nil || input.UserID == 0 {
		return httpx.BadRequest(c, "missing_user_id", "user_id is required")
	}
	if input.UserID == userID {
		return httpx.BadRequest(c, "cannot_block_self", "Cannot block yourself")
	}

	if err := h.blocks.SetBlock(userID, input.UserID, input.HideMe, input.HideThem); err != nil {
		return httpx.Internal(c, "block_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BlockHandler) RemoveBlock(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	blockedID, err := httpx.ParamUint(c, "user_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}
	if err := h.blocks.RemoveBlock(userID, blockedID); err != nil {
		return httpx.Internal(c, "unblock_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BlockHandler) HiddenPosts(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	ids, err := h.blocks.HiddenPosts(userID)
	if err != nil {
		return httpx.Internal(c, "hidden_posts_failed")
	}
	return c.JSON(fiber.Map{"post_ids": ids, "count": len(ids)})
}

func (h *BlockHandler) BlockedPosts(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	ids, err := h.blocks.BlockedPosts(userID)
	if err != nil {
		return httpx.Internal(c, "blocked_posts_failed")
	}
	return c.JSON(fiber.Map{"post_ids": ids, "count": len(ids)})
}
