package service

import (
	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(id uint) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	return s.userRepo.FindByUsername(username)
}

// SetShowHiatusedOwed flips whether hiatused posts appear in the user's
// default replies-owed view.
func (s *UserService) SetShowHiatusedOwed(userID uint, show bool) error {
	return s.userRepo.SetShowHiatusedOwed(userID, show)
}
