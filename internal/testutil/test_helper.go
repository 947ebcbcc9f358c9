package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, username, email string) *models.User {
	if id == 0 {
		id = 1
	}
	if username == "" {
		username = "testuser"
	}
	if email == "" {
		email = "test@example.com"
	}

	return &models.User{
		ID:               id,
		Username:         username,
		Email:            email,
		PasswordHash:     "hashed_password_123",
		Role:             "user",
		ShowHiatusedOwed: true,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

// CreateTestPost creates a test post with default values. TaggedAt and
// EditedAt start at CreatedAt, the state of a post with no replies.
func (h *TestHelper) CreateTestPost(id, creatorID uint, subject string) *models.Post {
	if id == 0 {
		id = 1
	}
	if creatorID == 0 {
		creatorID = 1
	}
	if subject == "" {
		subject = "Test post"
	}

	now := time.Now()
	return &models.Post{
		ID:           id,
		ContinuityID: 1,
		CreatorID:    creatorID,
		Subject:      subject,
		Content:      "Test content",
		Status:       models.StatusActive,
		Privacy:      models.PrivacyPublic,
		TaggedAt:     now,
		EditedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestReply creates a test reply with default values
func (h *TestHelper) CreateTestReply(id, postID, userID uint, order int, createdAt time.Time) *models.Reply {
	if id == 0 {
		id = 1
	}
	if postID == 0 {
		postID = 1
	}
	if userID == 0 {
		userID = 1
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &models.Reply{
		ID:         id,
		PostID:     postID,
		UserID:     userID,
		Content:    "Test reply",
		ReplyOrder: order,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

// SetupTestEnv sets up required environment variables for testing
func (h *TestHelper) SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("DATABASE_URL", "")
}

// TeardownTestEnv cleans up environment variables after testing
func (h *TestHelper) TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}
