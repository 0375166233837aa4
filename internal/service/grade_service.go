package service

import (
	"context"

	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/internal/policy"
	"anoa.com/studentrecords/internal/repository"
	"github.com/google/uuid"
)

type GradeInput struct {
	Subject  string  `json:"subject" binding:"required"`
	Marks    float64 `json:"marks" binding:"min=0,max=100"`
	Grade    string  `json:"grade" binding:"required"`
	Semester *int    `json:"semester" binding:"omitempty,min=1,max=8"`
	Credits  *int    `json:"credits" binding:"omitempty,min=0"`
}

type GradeUpdate struct {
	Subject  *string  `json:"subject"`
	Marks    *float64 `json:"marks" binding:"omitempty,min=0,max=100"`
	Grade    *string  `json:"grade"`
	Semester *int     `json:"semester" binding:"omitempty,min=1,max=8"`
	Credits  *int     `json:"credits" binding:"omitempty,min=0"`
}

// GradeService mutates the grades sub-collection. Every operation is
// admin-only; students see their grades through the general profile read.
type GradeService interface {
	Add(ctx context.Context, actor policy.Actor, studentID uuid.UUID, input GradeInput) (*model.Grade, error)
	Update(ctx context.Context, actor policy.Actor, studentID, gradeID uuid.UUID, input GradeUpdate) (*model.Grade, error)
	Delete(ctx context.Context, actor policy.Actor, studentID, gradeID uuid.UUID) error
}

type gradeService struct {
	students repository.StudentRepository
}

func NewGradeService(students repository.StudentRepository) GradeService {
	return &gradeService{students: students}
}

func (s *gradeService) Add(ctx context.Context, actor policy.Actor, studentID uuid.UUID, input GradeInput) (*model.Grade, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionWriteGrade); err != nil {
		return nil, err
	}

	grade := &model.Grade{
		Subject:  input.Subject,
		Marks:    input.Marks,
		Grade:    input.Grade,
		Semester: input.Semester,
		Credits:  input.Credits,
	}
	if err := s.students.AddGrade(ctx, studentID, grade); err != nil {
		return nil, err
	}
	return grade, nil
}

func (s *gradeService) Update(ctx context.Context, actor policy.Actor, studentID, gradeID uuid.UUID, input GradeUpdate) (*model.Grade, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionWriteGrade); err != nil {
		return nil, err
	}

	grade, err := s.students.FindGrade(ctx, studentID, gradeID)
	if err != nil {
		return nil, err
	}

	if input.Subject != nil {
		grade.Subject = *input.Subject
	}
	if input.Marks != nil {
		grade.Marks = *input.Marks
	}
	if input.Grade != nil {
		grade.Grade = *input.Grade
	}
	if input.Semester != nil {
		grade.Semester = input.Semester
	}
	if input.Credits != nil {
		grade.Credits = input.Credits
	}

	if err := s.students.UpdateGrade(ctx, grade); err != nil {
		return nil, err
	}
	return grade, nil
}

func (s *gradeService) Delete(ctx context.Context, actor policy.Actor, studentID, gradeID uuid.UUID) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionWriteGrade); err != nil {
		return err
	}

	return s.students.DeleteGrade(ctx, studentID, gradeID)
}
