package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"academics/internal/auth"
	apperrors "academics/internal/errors"
	"academics/internal/model"
	"academics/internal/repository"
)

// TokenIssuer mints and refreshes signed tokens.
type TokenIssuer interface {
	IssuePair(user *model.User) (auth.TokenPair, error)
	Refresh(refreshToken string) (string, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// AuthService handles authentication operations.
type AuthService interface {
	// ValidateCredentials resolves email+password to a user. Unknown email and
	// wrong password both yield ErrInvalidCredentials.
	ValidateCredentials(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	users    UserService
}

// NewAuthService creates a new authentication service. users is used to
// invalidate cached listings after registration and may be nil.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, users UserService) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		users:    users,
	}
}

func (s *authService) ValidateCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			auth.BurnComparison(password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive || !user.Role.Valid() {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return s.tokens.Refresh(refreshToken)
}

// Register creates a STUDENT account with a hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        normalizeEmail(in.Email),
		Username:     strings.TrimSpace(in.Username),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hashed,
		Role:         model.RoleStudent,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, err
	}
	if s.users != nil {
		s.users.Invalidate(ctx, user.ID)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
