package repository

import (
	"github.com/quillforge/continuum-backend/internal/models"
	"gorm.io/gorm"
)

type ContinuityRepository struct {
	db *gorm.DB
}

func NewContinuityRepository(db *gorm.DB) *ContinuityRepository {
	return &ContinuityRepository{db: db}
}

func (r *ContinuityRepository) Create(continuity *models.Continuity) error {
	return r.db.Create(continuity).Error
}

func (r *ContinuityRepository) FindByID(id uint) (*models.Continuity, error) {
	var continuity models.Continuity
	if err := r.db.Preload("Sections").First(&continuity, id).Error; err != nil {
		return nil, err
	}
	return &continuity, nil
}

func (r *ContinuityRepository) CreateSection(section *models.Section) error {
	return r.db.Create(section).Error
}
