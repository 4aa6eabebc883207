package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"academics/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns every user, or only those whose role equals *role.
	List(ctx context.Context, role *model.Role) ([]model.User, error)
}

type userRepository struct {
	store
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB, timeout time.Duration) UserRepository {
	return &userRepository{store: newStore(db, timeout)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("create user", db.Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("update user", db.Save(user).Error)
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, "delete user", &model.User{}, id)
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate("find user by email", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, role *model.Role) ([]model.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	q := db.Order("id")
	if role != nil {
		q = q.Where("role = ?", string(*role))
	}
	users := []model.User{}
	if err := q.Find(&users).Error; err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}
