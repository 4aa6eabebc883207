package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"academics/internal/auth"
	apperrors "academics/internal/errors"
	"academics/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 42
	}
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, role *model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssuePair(user *model.User) (auth.TokenPair, error) {
	args := m.Called(user)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *MockTokenIssuer) Refresh(refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func alice(t *testing.T) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("pw123")
	require.NoError(t, err)
	return &model.User{
		ID:           1,
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: hash,
		Role:         model.RoleTeacher,
		IsActive:     true,
	}
}

func TestAuthService_ValidateCredentials(t *testing.T) {
	storeDown := fmt.Errorf("find user by email: %w: dial tcp: i/o timeout", apperrors.ErrStoreUnavailable)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*testing.T, *MockUserRepository)
		expectedError error
	}{
		{
			name:     "correct credentials",
			email:    "alice@example.com",
			password: "pw123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(alice(t), nil)
			},
		},
		{
			name:     "email is normalised",
			email:    "  Alice@Example.com ",
			password: "pw123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(alice(t), nil)
			},
		},
		{
			name:     "wrong password",
			email:    "alice@example.com",
			password: "wrongpw",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(alice(t), nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "ghost@example.com",
			password: "pw123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, fmt.Errorf("find: %w", apperrors.ErrNotFound))
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "inactive account",
			email:    "alice@example.com",
			password: "pw123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				u := alice(t)
				u.IsActive = false
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(u, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "store unavailable is not invalid credentials",
			email:    "alice@example.com",
			password: "pw123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, storeDown)
			},
			expectedError: apperrors.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(t, mockRepo)

			svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), nil)
			user, err := svc.ValidateCredentials(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				if tt.expectedError == apperrors.ErrStoreUnavailable {
					assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(1), user.ID)
				assert.Equal(t, model.RoleTeacher, user.Role)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_UnknownAndWrongAreIndistinguishable(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(alice(t), nil)
	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)
	svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), nil)

	_, wrong := svc.ValidateCredentials(context.Background(), "alice@example.com", "nope")
	_, unknown := svc.ValidateCredentials(context.Background(), "ghost@example.com", "nope")

	assert.Equal(t, wrong, unknown)
	assert.Equal(t, wrong.Error(), unknown.Error())
}

func TestAuthService_Login(t *testing.T) {
	t.Run("successful login embeds role", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(alice(t), nil)
		jwtService := auth.NewJWTService("test-secret")
		svc := NewAuthService(mockRepo, jwtService, nil)

		res, err := svc.Login(context.Background(), "alice@example.com", "pw123")
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
		assert.Equal(t, "alice", res.User.Username)

		claims, err := jwtService.ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, model.RoleTeacher, claims.Role)
	})

	t.Run("wrong password issues nothing", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(alice(t), nil)
		issuer := new(MockTokenIssuer)
		svc := NewAuthService(mockRepo, issuer, nil)

		res, err := svc.Login(context.Background(), "alice@example.com", "wrongpw")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.Nil(t, res)
		issuer.AssertNotCalled(t, "IssuePair", mock.Anything)
	})

	t.Run("issuer failure returns no tokens", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(alice(t), nil)
		issuer := new(MockTokenIssuer)
		issuer.On("IssuePair", mock.Anything).Return(auth.TokenPair{}, fmt.Errorf("sign failed"))
		svc := NewAuthService(mockRepo, issuer, nil)

		res, err := svc.Login(context.Background(), "alice@example.com", "pw123")
		assert.Error(t, err)
		assert.Nil(t, res)
		issuer.AssertExpectations(t)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	issuer := new(MockTokenIssuer)
	issuer.On("Refresh", "good").Return("new-access", nil)
	issuer.On("Refresh", "stale").Return("", apperrors.ErrTokenExpired)
	svc := NewAuthService(new(MockUserRepository), issuer, nil)

	access, err := svc.RefreshToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "new-access", access)

	_, err = svc.RefreshToken(context.Background(), "stale")
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates a student", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), nil)

		user, err := svc.Register(context.Background(), RegisterInput{
			Email: "New@Example.com", Username: "newbie", Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, model.RoleStudent, user.Role)
		assert.True(t, auth.CheckPassword(user.PasswordHash, "secret1"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
			Return(fmt.Errorf("create user: %w", duplicateErr(t)))
		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), nil)

		user, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Username: "a", Password: "secret1"})
		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		assert.Nil(t, user)
	})
}
