package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/studentrecords/internal/auth"
	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/internal/repository"
	"anoa.com/studentrecords/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email       string     `json:"email" binding:"required,email"`
	Password    string     `json:"password" binding:"required,min=8"`
	Name        string     `json:"name" binding:"required"`
	RollNumber  string     `json:"rollNumber" binding:"required"`
	Department  string     `json:"department" binding:"required"`
	Year        int        `json:"year" binding:"required,min=1,max=4"`
	Phone       *string    `json:"phone"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Address     *string    `json:"address"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateAdminInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Secret   string `json:"secret" binding:"required"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *model.User    `json:"user"`
	Student     *model.Student `json:"student,omitempty"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	CreateAdmin(ctx context.Context, input CreateAdminInput) (*AuthResponse, error)
}

type authService struct {
	users       repository.UserRepository
	students    repository.StudentRepository
	search      SearchService
	secret      string
	tokenTTL    time.Duration
	adminSecret string
}

func NewAuthService(users repository.UserRepository, students repository.StudentRepository, search SearchService, secret string, tokenTTL time.Duration, adminSecret string) AuthService {
	return &authService{
		users:       users,
		students:    students,
		search:      search,
		secret:      secret,
		tokenTTL:    tokenTTL,
		adminSecret: adminSecret,
	}
}

// Register creates both the student record and the linked account, then
// issues a token so the caller lands straight on the dashboard.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user already exists with this email: %w", apperror.ErrValidation)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	if _, err := s.students.FindByRollNumber(ctx, input.RollNumber); err == nil {
		return nil, fmt.Errorf("roll number already exists: %w", apperror.ErrValidation)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	role, err := s.users.FindRoleByName(ctx, model.RoleStudent)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &model.Student{
		RollNumber:  input.RollNumber,
		Name:        input.Name,
		Email:       email,
		Phone:       input.Phone,
		Department:  input.Department,
		Year:        input.Year,
		DateOfBirth: input.DateOfBirth,
		Address:     input.Address,
		Status:      model.StudentStatusActive,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	roleID := role.ID
	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		RoleID:       &roleID,
		StudentID:    &student.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.IndexStudent(student); err != nil {
			log.Printf("failed to index student %s: %v", student.ID, err)
		}
	}

	createdUser, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return s.buildAuthResponse(createdUser, student)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", apperror.ErrUnauthorized)
	}

	var student *model.Student
	if user.StudentID != nil {
		if found, err := s.students.FindByID(ctx, *user.StudentID); err == nil {
			student = found
		}
	}

	return s.buildAuthResponse(user, student)
}

// CreateAdmin provisions an admin account guarded by the shared bootstrap
// secret. Admin accounts carry no student link.
func (s *authService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*AuthResponse, error) {
	if s.adminSecret == "" || input.Secret != s.adminSecret {
		return nil, fmt.Errorf("invalid admin secret: %w", apperror.ErrForbidden)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user already exists: %w", apperror.ErrValidation)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	role, err := s.users.FindRoleByName(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roleID := role.ID
	admin := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		RoleID:       &roleID,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, err
	}

	createdAdmin, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return s.buildAuthResponse(createdAdmin, nil)
}

func (s *authService) buildAuthResponse(user *model.User, student *model.Student) (*AuthResponse, error) {
	token, expiresAt, err := auth.GenerateToken(s.secret, user, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Student:     student,
	}, nil
}
