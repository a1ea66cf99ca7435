package services

import (
	"context"
	"testing"
	"time"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLevel(ctx context.Context, id string, level int) error {
	args := m.Called(ctx, id, level)
	return args.Error(0)
}

func (m *MockUserRepository) AddXP(ctx context.Context, id string, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) ResetProgress(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListTopByXP(ctx context.Context, limit int) ([]*domain.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("Success: Should register a valid user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		input := RegisterInput{
			Email:    "test_success@habitquest.app",
			Name:     "Tester",
			Password: "StrongPassword123!",
		}

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := service.Register(ctx, input)

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, input.Email, user.Email)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.PasswordHash)
		assert.Equal(t, 0, user.XP)
		assert.Equal(t, 1, user.Level)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Should return error for invalid email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		input := RegisterInput{Email: "not-an-email", Password: "pass"}

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.Nil(t, user)

		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return error for short password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		input := RegisterInput{Email: "valid@email.com", Password: "short"}

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.Nil(t, user)

		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should propagate repository error (Duplicate Email)", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		input := RegisterInput{Email: "duplicate@email.com", Password: "StrongPassword123!"}

		mockRepo.On("Create", ctx, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
		assert.Nil(t, user)

		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	newStoredUser := func(t *testing.T, email, password string) *domain.User {
		t.Helper()
		user, err := domain.NewUser("user-1", email, "Tester")
		if err != nil {
			t.Fatalf("NewUser failed: %v", err)
		}
		if err := user.SetPassword(password); err != nil {
			t.Fatalf("SetPassword failed: %v", err)
		}
		return user
	}

	t.Run("Success: Valid credentials return user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		stored := newStoredUser(t, "login@habitquest.app", "CorrectHorse9!")
		mockRepo.On("GetByEmail", ctx, "login@habitquest.app").Return(stored, nil)

		user, err := service.Login(ctx, "login@habitquest.app", "CorrectHorse9!")

		assert.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
	})

	t.Run("Fail: Wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		stored := newStoredUser(t, "login@habitquest.app", "CorrectHorse9!")
		mockRepo.On("GetByEmail", ctx, "login@habitquest.app").Return(stored, nil)

		user, err := service.Login(ctx, "login@habitquest.app", "WrongPassword1!")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Nil(t, user)
	})

	t.Run("Fail: Unknown email maps to invalid credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo)
		ctx := context.Background()

		mockRepo.On("GetByEmail", ctx, "ghost@habitquest.app").Return(nil, domain.ErrUserNotFound)

		user, err := service.Login(ctx, "ghost@habitquest.app", "Whatever123!")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Nil(t, user)
	})
}

func TestTokenService(t *testing.T) {
	t.Parallel()

	t.Run("Round trip: generated token validates to the same user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		user, _ := domain.NewUser("user-42", "token@habitquest.app", "Tester")
		mockRepo.On("GetByID", mock.Anything, "user-42").Return(user, nil)

		svc := NewTokenService("test-secret", "habitquest", time.Hour, mockRepo)

		token, err := svc.GenerateToken("user-42")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		userID, err := svc.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-42", userID)
	})

	t.Run("Fail: Token signed with a different secret", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		good := NewTokenService("secret-a", "habitquest", time.Hour, mockRepo)
		evil := NewTokenService("secret-b", "habitquest", time.Hour, mockRepo)

		token, _ := evil.GenerateToken("user-42")

		_, err := good.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("Fail: Wrong issuer", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		minted := NewTokenService("secret", "someone-else", time.Hour, mockRepo)
		checker := NewTokenService("secret", "habitquest", time.Hour, mockRepo)

		token, _ := minted.GenerateToken("user-42")

		_, err := checker.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("Fail: Deleted user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByID", mock.Anything, "user-42").Return(nil, domain.ErrUserNotFound)

		svc := NewTokenService("secret", "habitquest", time.Hour, mockRepo)
		token, _ := svc.GenerateToken("user-42")

		_, err := svc.ValidateToken(token)
		assert.Error(t, err)
	})
}
