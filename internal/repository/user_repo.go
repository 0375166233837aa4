package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByStudentID(ctx context.Context, studentID uuid.UUID) (*model.User, error)
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").Where("student_id = ?", studentID).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("find user by student id: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, fmt.Errorf("find role: %w", translate(err))
	}
	return &role, nil
}

// translate keeps driver errors out of the surface: missing rows become
// ErrNotFound, anything else is a generic storage failure.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return fmt.Errorf("%v: %w", err, apperror.ErrStorage)
}
