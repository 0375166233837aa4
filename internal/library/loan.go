// Package library holds the loan lifecycle rules: borrow, read-time overdue
// classification and the one-shot return with fine settlement. Nothing here
// touches storage; callers persist the resulting record themselves.
package library

import (
	"fmt"
	"time"

	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/pkg/apperror"
	"github.com/google/uuid"
)

const (
	// LoanPeriod is the fixed borrowing window. DueDate is stamped once at
	// borrow time and never recomputed.
	LoanPeriod = 14 * 24 * time.Hour

	// FinePerDay is the flat currency rate charged per full day late.
	FinePerDay = 5
)

// BorrowInput carries the book details for a new loan.
type BorrowInput struct {
	BookTitle string  `json:"bookTitle" binding:"required"`
	Author    *string `json:"author"`
	ISBN      *string `json:"isbn"`
}

// NewLoan constructs a loan in the borrowed state with dueDate = now + LoanPeriod.
// There is no cap on concurrent loans per student.
func NewLoan(studentID uuid.UUID, input BorrowInput, now time.Time) model.BookLoan {
	return model.BookLoan{
		StudentID:    studentID,
		BookTitle:    input.BookTitle,
		Author:       input.Author,
		ISBN:         input.ISBN,
		BorrowedDate: now,
		DueDate:      now.Add(LoanPeriod),
		Status:       model.LoanStatusBorrowed,
		Fine:         0,
	}
}

// Classify derives the effective status of a loan at the given instant.
// Returned dominates once returnedDate is stamped; otherwise a loan past its
// due date reads as overdue. The stored status is never consulted, so no
// background job has to keep it fresh.
func Classify(loan model.BookLoan, now time.Time) string {
	if loan.ReturnedDate != nil {
		return model.LoanStatusReturned
	}
	if now.After(loan.DueDate) {
		return model.LoanStatusOverdue
	}
	return model.LoanStatusBorrowed
}

// IsActive reports whether the loan should appear in a "currently borrowed"
// listing, i.e. classifies as borrowed or overdue.
func IsActive(loan model.BookLoan, now time.Time) bool {
	return Classify(loan, now) != model.LoanStatusReturned
}

// Return settles a loan: returnedDate is stamped, status moves to returned
// and the fine is finalized from full days elapsed past the due date.
// Returning twice is an invalid state transition; the stored fine and
// returnedDate are left untouched.
func Return(loan model.BookLoan, now time.Time) (model.BookLoan, error) {
	if loan.ReturnedDate != nil {
		return loan, fmt.Errorf("book already returned: %w", apperror.ErrInvalidState)
	}

	returned := now
	loan.ReturnedDate = &returned
	loan.Status = model.LoanStatusReturned
	loan.Fine = OverdueDays(loan.DueDate, now) * FinePerDay

	return loan, nil
}

// OverdueDays counts full 24h periods between dueDate and now, truncating.
// Returning 23 hours late is 0 days overdue; on or before the due date is 0.
func OverdueDays(dueDate, now time.Time) int {
	if !now.After(dueDate) {
		return 0
	}
	return int(now.Sub(dueDate) / (24 * time.Hour))
}
