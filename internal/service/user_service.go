package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"academics/internal/auth"
	"academics/internal/cache"
	apperrors "academics/internal/errors"
	"academics/internal/model"
	"academics/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// CreateUserInput carries an administrator's account creation request.
type CreateUserInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Role      model.Role
}

// UpdateUserInput carries partial account changes. Nil fields are left untouched.
type UpdateUserInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	Role      *model.Role
	IsActive  *bool
	Password  *string
}

// UserService exposes account operations. Every read returns summaries,
// never credentials.
type UserService interface {
	// ListUsers returns all users when role is nil, otherwise only users whose
	// role equals *role exactly. Unknown roles give an empty list.
	ListUsers(ctx context.Context, role *string) ([]model.UserSummary, error)
	GetUser(ctx context.Context, id uint) (*model.UserSummary, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*model.UserSummary, error)
	UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*model.UserSummary, error)
	DeleteUser(ctx context.Context, id uint) error
	// Invalidate drops cached entries touching user id.
	Invalidate(ctx context.Context, id uint)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
	ttl   time.Duration
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client, ttl time.Duration) UserService {
	if ttl <= 0 {
		ttl = userCacheTTL
	}
	return &userService{repo: repo, cache: cache, ttl: ttl}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func listCacheKey(role *model.Role) string {
	if role == nil {
		return "users:all"
	}
	return "users:role:" + string(*role)
}

func (s *userService) ListUsers(ctx context.Context, role *string) ([]model.UserSummary, error) {
	var filter *model.Role
	if role != nil {
		r := model.Role(*role)
		if !r.Valid() {
			return []model.UserSummary{}, nil
		}
		filter = &r
	}

	key := listCacheKey(filter)
	var cached []model.UserSummary
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := model.Summaries(users)
	s.cache.SetJSON(ctx, key, out, s.ttl)
	return out, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.UserSummary, error) {
	var cached model.UserSummary
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := user.Summary()
	s.cache.SetJSON(ctx, s.cacheKey(id), summary, s.ttl)
	return &summary, nil
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*model.UserSummary, error) {
	if !in.Role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}
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
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, err
	}
	s.Invalidate(ctx, user.ID)
	summary := user.Summary()
	return &summary, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*model.UserSummary, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperrors.ErrInvalidRole
		}
		user.Role = *in.Role
	}
	if in.Username != nil {
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != nil {
		hashed, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, err
	}
	s.Invalidate(ctx, id)
	summary := user.Summary()
	return &summary, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsForeignKey(err) {
			return apperrors.ErrInUse
		}
		return err
	}
	s.Invalidate(ctx, id)
	return nil
}

func (s *userService) Invalidate(ctx context.Context, id uint) {
	keys := []string{s.cacheKey(id), listCacheKey(nil), dashboardCacheKey}
	for _, r := range model.Roles() {
		r := r
		keys = append(keys, listCacheKey(&r))
	}
	_ = s.cache.Delete(ctx, keys...)
}

// FlushReadModels drops every cached user entry and the dashboard, for writes
// that bypass the services.
func FlushReadModels(ctx context.Context, c *cache.Client) {
	_ = c.DeletePrefix(ctx, "user:", "users:", dashboardCacheKey)
}
