package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/studentrecords/internal/auth"
	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(users *fakeUserRepo, students *fakeStudentRepo) AuthService {
	return NewAuthService(users, students, nil, "test-secret", time.Hour, "bootstrap-secret")
}

func registerInput(email, roll string) RegisterInput {
	return RegisterInput{
		Email:      email,
		Password:   "password123",
		Name:       "Asep Sunandar",
		RollNumber: roll,
		Department: "Computer Science",
		Year:       2,
	}
}

func TestRegisterCreatesLinkedStudentAndAccount(t *testing.T) {
	users := newFakeUserRepo()
	students := newFakeStudentRepo()
	svc := newAuthService(users, students)

	res, err := svc.Register(context.Background(), registerInput("asep@example.com", "CS-001"))
	require.NoError(t, err)

	require.NotNil(t, res.Student)
	assert.Equal(t, "CS-001", res.Student.RollNumber)
	assert.Equal(t, model.StudentStatusActive, res.Student.Status)

	require.NotNil(t, res.User.StudentID)
	assert.Equal(t, res.Student.ID, *res.User.StudentID)
	assert.Equal(t, model.RoleStudent, res.User.Role.Name)
	assert.Empty(t, res.User.PasswordHash)

	claims, err := auth.ParseToken("test-secret", res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, claims.Role)
	require.NotNil(t, claims.StudentID)
	assert.Equal(t, res.Student.ID, *claims.StudentID)
}

func TestRegisterRejectsDuplicateEmailAndRoll(t *testing.T) {
	users := newFakeUserRepo()
	students := newFakeStudentRepo()
	svc := newAuthService(users, students)

	_, err := svc.Register(context.Background(), registerInput("asep@example.com", "CS-001"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerInput("asep@example.com", "CS-002"))
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = svc.Register(context.Background(), registerInput("budi@example.com", "CS-001"))
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestLoginUniformFailureMessage(t *testing.T) {
	users := newFakeUserRepo()
	students := newFakeStudentRepo()
	svc := newAuthService(users, students)

	_, err := svc.Register(context.Background(), registerInput("asep@example.com", "CS-001"))
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), LoginInput{Email: "asep@example.com", Password: "nope12345"})
	_, unknownUser := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "nope12345"})

	assert.True(t, errors.Is(wrongPassword, apperror.ErrUnauthorized))
	assert.True(t, errors.Is(unknownUser, apperror.ErrUnauthorized))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestLoginReturnsLinkedStudent(t *testing.T) {
	users := newFakeUserRepo()
	students := newFakeStudentRepo()
	svc := newAuthService(users, students)

	_, err := svc.Register(context.Background(), registerInput("asep@example.com", "CS-001"))
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), LoginInput{Email: "asep@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NotNil(t, res.Student)
	assert.Equal(t, "CS-001", res.Student.RollNumber)
}

func TestCreateAdminGuardedBySecret(t *testing.T) {
	users := newFakeUserRepo()
	students := newFakeStudentRepo()
	svc := newAuthService(users, students)

	_, err := svc.CreateAdmin(context.Background(), CreateAdminInput{
		Email:    "root@example.com",
		Password: "password123",
		Secret:   "wrong",
	})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	res, err := svc.CreateAdmin(context.Background(), CreateAdminInput{
		Email:    "root@example.com",
		Password: "password123",
		Secret:   "bootstrap-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.User.Role.Name)
	assert.Nil(t, res.User.StudentID)
	assert.Nil(t, res.Student)
}
