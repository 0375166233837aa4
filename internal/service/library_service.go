package service

import (
	"context"
	"fmt"
	"time"

	"anoa.com/studentrecords/internal/library"
	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/internal/policy"
	"anoa.com/studentrecords/internal/repository"
	"anoa.com/studentrecords/internal/ws"
	"github.com/google/uuid"
)

// LibraryService drives the loan lifecycle against the store. All state
// rules live in the library package; this layer adds authorization,
// persistence and notifications.
type LibraryService interface {
	Borrow(ctx context.Context, actor policy.Actor, studentID uuid.UUID, input library.BorrowInput) (*model.BookLoan, error)
	Return(ctx context.Context, actor policy.Actor, studentID, loanID uuid.UUID) (*model.BookLoan, error)
	Borrowed(ctx context.Context, actor policy.Actor, studentID uuid.UUID) ([]model.BookLoan, error)
	History(ctx context.Context, actor policy.Actor, studentID uuid.UUID) ([]model.BookLoan, error)
}

type libraryService struct {
	students repository.StudentRepository
	hub      *ws.Hub
}

func NewLibraryService(students repository.StudentRepository, hub *ws.Hub) LibraryService {
	return &libraryService{students: students, hub: hub}
}

func (s *libraryService) Borrow(ctx context.Context, actor policy.Actor, studentID uuid.UUID, input library.BorrowInput) (*model.BookLoan, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionWriteLoan); err != nil {
		return nil, err
	}

	loan := library.NewLoan(studentID, input, time.Now())
	if err := s.students.AddLoan(ctx, studentID, &loan); err != nil {
		return nil, err
	}

	s.notify(actor, "loan.borrowed", fmt.Sprintf(
		"Borrowed %q, due back %s", loan.BookTitle, loan.DueDate.Format("02 Jan 2006")))

	return &loan, nil
}

func (s *libraryService) Return(ctx context.Context, actor policy.Actor, studentID, loanID uuid.UUID) (*model.BookLoan, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionWriteLoan); err != nil {
		return nil, err
	}

	loan, err := s.students.FindLoan(ctx, studentID, loanID)
	if err != nil {
		return nil, err
	}

	returned, err := library.Return(*loan, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.students.UpdateLoan(ctx, &returned); err != nil {
		return nil, err
	}

	if returned.Fine > 0 {
		s.notify(actor, "loan.fine", fmt.Sprintf(
			"Returned %q with a fine of %d", returned.BookTitle, returned.Fine))
	}

	return &returned, nil
}

// Borrowed lists the loans that classify as borrowed or overdue right now.
// Classification happens at read time; nothing is written back.
func (s *libraryService) Borrowed(ctx context.Context, actor policy.Actor, studentID uuid.UUID) ([]model.BookLoan, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionReadStudent); err != nil {
		return nil, err
	}

	loans, err := s.students.LoansByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := make([]model.BookLoan, 0, len(loans))
	for _, loan := range loans {
		if !library.IsActive(loan, now) {
			continue
		}
		loan.Status = library.Classify(loan, now)
		active = append(active, loan)
	}

	return active, nil
}

// History lists every loan the student has, returned ones included.
func (s *libraryService) History(ctx context.Context, actor policy.Actor, studentID uuid.UUID) ([]model.BookLoan, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionReadStudent); err != nil {
		return nil, err
	}

	loans, err := s.students.LoansByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range loans {
		loans[i].Status = library.Classify(loans[i], now)
	}

	return loans, nil
}

func (s *libraryService) notify(actor policy.Actor, kind, content string) {
	if s.hub == nil {
		return
	}
	s.hub.Notify(actor.UserID.String(), kind, content)
}
