package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quillforge/continuum-backend/internal/httpx"
	"github.com/quillforge/continuum-backend/internal/service"
	"github.com/quillforge/continuum-backend/internal/validation"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Email = validation.NormalizeEmail(input.Email)
	input.Username = validation.NormalizeUsername(input.Username)
	if !validation.ValidateEmail(input.Email) {
		return httpx.BadRequest(c, "invalid_email", "Invalid email address")
	}
	if !validation.ValidateUsername(input.Username) {
		return httpx.BadRequest(c, "invalid_username", "Username must be 3-32 characters (letters, digits, underscore)")
	}
	if !validation.ValidatePassword(input.Password) {
		return httpx.BadRequest(c, "weak_password", "Password too short")
	}

	resp, err := h.authService.Register(input)
	if err != nil {
		return httpx.BadRequest(c, "registration_failed", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.Email = validation.NormalizeEmail(input.Email)

	resp, err := h.authService.Login(input)
	if err != nil {
		return httpx.Unauthorized(c, "invalid_credentials", "Invalid credentials")
	}
	return c.JSON(resp)
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input refreshInput
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return httpx.BadRequest(c, "missing_refresh_token", "refresh_token is required")
	}

	resp, err := h.authService.Refresh(input.RefreshToken)
	if err != nil {
		return httpx.Unauthorized(c, "invalid_refresh_token", "Invalid refresh token")
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input refreshInput
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return httpx.BadRequest(c, "missing_refresh_token", "refresh_token is required")
	}
	if err := h.authService.Logout(input.RefreshToken); err != nil {
		return httpx.Internal(c, "logout_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
