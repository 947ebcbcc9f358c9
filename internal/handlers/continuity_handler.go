package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/quillforge/continuum-backend/internal/httpx"
	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
	"github.com/quillforge/continuum-backend/internal/validation"
	"gorm.io/gorm"
)

type ContinuityHandler struct {
	continuityRepo repository.ContinuityRepositoryInterface
}

func NewContinuityHandler(continuityRepo repository.ContinuityRepositoryInterface) *ContinuityHandler {
	return &ContinuityHandler{continuityRepo: continuityRepo}
}

type continuityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ContinuityHandler) CreateContinuity(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input continuityInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.Name = validation.TrimAndLimit(input.Name, 100)
	if input.Name == "" {
		return httpx.BadRequest(c, "missing_name", "Name is required")
	}

	continuity := &models.Continuity{
		Name:        input.Name,
		Description: validation.TrimAndLimit(input.Description, 255),
		CreatorID:   userID,
	}
	if err := h.continuityRepo.Create(continuity); err != nil {
		return httpx.Internal(c, "create_continuity_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(continuity)
}

func (h *ContinuityHandler) GetContinuity(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	continuityID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_continuity_id", "Invalid continuity id")
	}

	continuity, err := h.continuityRepo.FindByID(continuityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "continuity_not_found", "Continuity not found")
		}
		return httpx.Internal(c, "fetch_continuity_failed")
	}
	return c.JSON(continuity)
}

type sectionInput struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func (h *ContinuityHandler) CreateSection(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	continuityID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_continuity_id", "Invalid continuity id")
	}

	var input sectionInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.Name = validation.TrimAndLimit(input.Name, 100)
	if input.Name == "" {
		return httpx.BadRequest(c, "missing_name", "Name is required")
	}

	section := &models.Section{
		ContinuityID: continuityID,
		Name:         input.Name,
		Position:     input.Position,
	}
	if err := h.continuityRepo.CreateSection(section); err != nil {
		return httpx.Internal(c, "create_section_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(section)
}
