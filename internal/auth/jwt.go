// Package auth issues and validates the bearer tokens carrying account
// identity, role and the linked student id.
package auth

import (
	"fmt"
	"time"

	"anoa.com/studentrecords/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload. The policy engine only ever consumes Role and
// StudentID from it.
type Claims struct {
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	StudentID *uuid.UUID `json:"studentId,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the account with the given lifetime.
func GenerateToken(secret string, user *model.User, ttl time.Duration) (string, int64, error) {
	expiresAt := time.Now().Add(ttl)

	claims := Claims{
		Email:     user.Email,
		Role:      user.Role.Name,
		StudentID: user.StudentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

// ParseToken validates the signature and expiry and returns the claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
