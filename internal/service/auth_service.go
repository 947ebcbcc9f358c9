package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo    repository.UserRepositoryInterface
	refreshRepo repository.RefreshTokenRepositoryInterface
}

func NewAuthService(userRepo repository.UserRepositoryInterface, refreshRepo repository.RefreshTokenRepositoryInterface) *AuthService {
	return &AuthService{userRepo: userRepo, refreshRepo: refreshRepo}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refresh_token"`
	User         models.UserResponse `json:"user"`
}

func (s *AuthService) Register(input RegisterInput) (*AuthResponse, error) {
	// Check if user exists
	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, errors.New("email already exists")
	}
	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		return nil, errors.New("username already exists")
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:         input.Username,
		Email:            input.Email,
		PasswordHash:     string(hashedPassword),
		ShowHiatusedOwed: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(input.Email)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}
	return s.issueTokens(user)
}

// Refresh rotates a refresh token into a fresh token pair.
func (s *AuthService) Refresh(refreshToken string) (*AuthResponse, error) {
	hash := hashToken(refreshToken)
	stored, err := s.refreshRepo.FindValidByHash(hash)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.refreshRepo.RevokeByHash(hash); err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *AuthService) Logout(refreshToken string) error {
	return s.refreshRepo.RevokeByHash(hashToken(refreshToken))
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	raw := uuid.NewString()
	if err := s.refreshRepo.Create(&models.RefreshToken{
		UserID:    user.ID,
		TokenID:   uuid.NewString(),
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:        token,
		RefreshToken: raw,
		User:         user.ToResponse(),
	}, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
