package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User is an account record. Role is fixed at creation and the account links
// to at most one Student (only when role is student). Accounts are never
// deleted; deleting a student leaves the account orphaned but inert.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	RoleID       *uint      `json:"roleId"`
	Role         Role       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	StudentID    *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"studentId,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
