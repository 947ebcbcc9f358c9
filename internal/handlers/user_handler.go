package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/quillforge/continuum-backend/internal/httpx"
	"github.com/quillforge/continuum-backend/internal/service"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	user, err := h.userService.GetUser(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_user_failed")
	}
	return c.JSON(user.ToResponse())
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	user, err := h.userService.GetByUsername(c.Params("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "user_not_found", "User not found")
		}
		return httpx.Internal(c, "fetch_user_failed")
	}
	return c.JSON(user.ToResponse())
}
