package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StudentStatusActive    = "active"
	StudentStatusInactive  = "inactive"
	StudentStatusGraduated = "graduated"
)

const (
	ProjectStatusOngoing   = "ongoing"
	ProjectStatusCompleted = "completed"
	ProjectStatusSubmitted = "submitted"
)

const (
	LoanStatusBorrowed = "borrowed"
	LoanStatusReturned = "returned"
	LoanStatusOverdue  = "overdue"
)

// Student is the profile record owned by at most one account. Roll number and
// email are globally unique.
type Student struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RollNumber  string     `gorm:"size:50;uniqueIndex;not null" json:"rollNumber"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Email       string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone       *string    `gorm:"size:30" json:"phone,omitempty"`
	Department  string     `gorm:"size:100;not null" json:"department"`
	Year        int        `gorm:"not null" json:"year"`
	Semester    *int       `json:"semester,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Address     *string    `gorm:"type:text" json:"address,omitempty"`
	PhotoURL    *string    `gorm:"type:text" json:"photoUrl,omitempty"`
	Attendance  float64    `gorm:"default:0" json:"attendance"`
	Status      string     `gorm:"size:20;default:active" json:"status"`
	Grades      []Grade    `gorm:"constraint:OnDelete:CASCADE" json:"grades"`
	Projects    []Project  `gorm:"constraint:OnDelete:CASCADE" json:"projects"`
	Loans       []BookLoan `gorm:"constraint:OnDelete:CASCADE" json:"libraryBooks"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Grade struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;index;not null" json:"studentId"`
	Subject   string    `gorm:"size:100;not null" json:"subject"`
	Marks     float64   `json:"marks"`
	Grade     string    `gorm:"size:5" json:"grade"`
	Semester  *int      `json:"semester,omitempty"`
	Credits   *int      `json:"credits,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (g *Grade) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type Project struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"studentId"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Description   *string    `gorm:"type:text" json:"description,omitempty"`
	Technologies  []string   `gorm:"serializer:json" json:"technologies"`
	GithubLink    *string    `gorm:"type:text" json:"githubLink,omitempty"`
	LiveLink      *string    `gorm:"type:text" json:"liveLink,omitempty"`
	Status        string     `gorm:"size:20;default:ongoing" json:"status"`
	Grade         *string    `gorm:"size:5" json:"grade,omitempty"`
	SubmittedDate *time.Time `json:"submittedDate,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BookLoan is one borrow/return cycle of a library item. DueDate is fixed at
// creation; Fine stays 0 until return time and is frozen afterwards. Status
// holds the value stored at the last transition; the effective status must
// always be derived through library.Classify before it is surfaced.
type BookLoan struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"studentId"`
	BookTitle    string     `gorm:"size:200;not null" json:"bookTitle"`
	Author       *string    `gorm:"size:100" json:"author,omitempty"`
	ISBN         *string    `gorm:"size:30" json:"isbn,omitempty"`
	BorrowedDate time.Time  `gorm:"not null" json:"borrowedDate"`
	DueDate      time.Time  `gorm:"not null" json:"dueDate"`
	ReturnedDate *time.Time `json:"returnedDate,omitempty"`
	Status       string     `gorm:"size:20;default:borrowed" json:"status"`
	Fine         int        `gorm:"default:0" json:"fine"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (l *BookLoan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
