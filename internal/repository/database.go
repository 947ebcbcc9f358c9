package repository

import (
	"fmt"
	"os"

	"github.com/quillforge/continuum-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB() (*gorm.DB, error) {
	// Build connection string
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
	)

	// Connect to database
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Continuity{},
		&models.Section{},
		&models.Post{},
		&models.Reply{},
		&models.PostAuthor{},
		&models.ContentWarning{},
		&models.ReadMarker{},
		&models.Block{},
		&models.AccessCircle{},
		&models.CircleMember{},
		&models.PostViewer{},
		&models.PostCircle{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

// NewRepositorySet binds every repository to the given connection, which may
// be a transaction handle.
func NewRepositorySet(db *gorm.DB) RepositorySet {
	return RepositorySet{
		Users:   NewUserRepository(db),
		Posts:   NewPostRepository(db),
		Replies: NewReplyRepository(db),
		Authors: NewPostAuthorRepository(db),
		Markers: NewReadMarkerRepository(db),
		Blocks:  NewBlockRepository(db),
		Access:  NewAccessRepository(db),
	}
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Do(fn func(r RepositorySet) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositorySet(tx))
	})
}
