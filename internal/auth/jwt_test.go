package auth

import (
	"testing"
	"time"

	"anoa.com/studentrecords/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	studentID := uuid.New()
	user := &model.User{
		ID:        uuid.New(),
		Email:     "jane@example.com",
		Role:      model.Role{Name: model.RoleStudent},
		StudentID: &studentID,
	}

	token, expiresAt, err := GenerateToken("secret", user, time.Minute)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, model.RoleStudent, claims.Role)
	require.NotNil(t, claims.StudentID)
	assert.Equal(t, studentID, *claims.StudentID)
}

func TestTokenAdminHasNoStudentID(t *testing.T) {
	user := &model.User{
		ID:    uuid.New(),
		Email: "admin@example.com",
		Role:  model.Role{Name: model.RoleAdmin},
	}

	token, _, err := GenerateToken("secret", user, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Nil(t, claims.StudentID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	user := &model.User{ID: uuid.New(), Role: model.Role{Name: model.RoleAdmin}}

	token, _, err := GenerateToken("secret", user, time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	user := &model.User{ID: uuid.New(), Role: model.Role{Name: model.RoleAdmin}}

	token, _, err := GenerateToken("secret", user, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}
