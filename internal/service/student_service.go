package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"anoa.com/studentrecords/internal/library"
	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/internal/policy"
	"anoa.com/studentrecords/internal/repository"
	"anoa.com/studentrecords/pkg/apperror"
	"anoa.com/studentrecords/pkg/storage"
	"github.com/google/uuid"
)

type CreateStudentInput struct {
	RollNumber  string     `json:"rollNumber" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	Phone       *string    `json:"phone"`
	Department  string     `json:"department" binding:"required"`
	Year        int        `json:"year" binding:"required,min=1,max=4"`
	Semester    *int       `json:"semester" binding:"omitempty,min=1,max=8"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Address     *string    `json:"address"`
	Attendance  *float64   `json:"attendance" binding:"omitempty,min=0,max=100"`
	Status      *string    `json:"status" binding:"omitempty,oneof=active inactive graduated"`
}

// PhotoFile represents an uploaded student photo.
type PhotoFile struct {
	Reader   io.Reader
	FileName string
}

type StatsOverview struct {
	TotalStudents  int64   `json:"totalStudents"`
	ActiveStudents int64   `json:"activeStudents"`
	Departments    int     `json:"departments"`
	PassPercentage float64 `json:"passPercentage"`
}

type StudentService interface {
	List(ctx context.Context, actor policy.Actor, filter repository.ListFilter) ([]model.Student, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*model.Student, error)
	Create(ctx context.Context, actor policy.Actor, input CreateStudentInput) (*model.Student, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input policy.StudentUpdate) (*model.Student, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
	UploadPhoto(ctx context.Context, actor policy.Actor, id uuid.UUID, photo PhotoFile) (string, error)
	Stats(ctx context.Context, actor policy.Actor) (*StatsOverview, error)
}

type studentService struct {
	students     repository.StudentRepository
	search       SearchService
	photoStorage storage.PhotoStorage
	uploadFolder string
}

func NewStudentService(students repository.StudentRepository, search SearchService, photoStorage storage.PhotoStorage, uploadFolder string) StudentService {
	return &studentService{
		students:     students,
		search:       search,
		photoStorage: photoStorage,
		uploadFolder: uploadFolder,
	}
}

func (s *studentService) List(ctx context.Context, actor policy.Actor, filter repository.ListFilter) ([]model.Student, error) {
	if err := policy.Authorize(actor, uuid.Nil, policy.ActionListStudents); err != nil {
		return nil, err
	}

	// Free-text search goes through the index when available; id hits then
	// feed the SQL filter so department/year/status still apply.
	if filter.Search != "" && s.search != nil && s.search.Enabled() {
		ids, err := s.search.Search(filter.Search, 100)
		if err != nil {
			log.Printf("search index unavailable, falling back to SQL: %v", err)
		} else {
			if len(ids) == 0 {
				return []model.Student{}, nil
			}
			filter.IDs = ids
		}
	}

	return s.students.FindAll(ctx, filter)
}

// Get resolves the record before the permission check, so a missing id reads
// as not found even to callers who would be denied.
func (s *studentService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*model.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, student.ID, policy.ActionReadStudent); err != nil {
		return nil, err
	}

	classifyLoans(student, time.Now())
	return student, nil
}

func (s *studentService) Create(ctx context.Context, actor policy.Actor, input CreateStudentInput) (*model.Student, error) {
	if err := policy.Authorize(actor, uuid.Nil, policy.ActionCreateStudent); err != nil {
		return nil, err
	}

	if _, err := s.students.FindByRollNumber(ctx, input.RollNumber); err == nil {
		return nil, fmt.Errorf("roll number already exists: %w", apperror.ErrValidation)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if _, err := s.students.FindByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("email already exists: %w", apperror.ErrValidation)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	student := &model.Student{
		RollNumber:  input.RollNumber,
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Department:  input.Department,
		Year:        input.Year,
		Semester:    input.Semester,
		DateOfBirth: input.DateOfBirth,
		Address:     input.Address,
		Status:      model.StudentStatusActive,
	}
	if input.Attendance != nil {
		student.Attendance = *input.Attendance
	}
	if input.Status != nil {
		student.Status = *input.Status
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	s.reindex(student)
	return student, nil
}

func (s *studentService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input policy.StudentUpdate) (*model.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, student.ID, policy.ActionUpdateStudent); err != nil {
		return nil, err
	}

	// Fields outside the caller's allow-list are dropped here, not rejected.
	applied := policy.FilterStudentUpdate(actor.Role, input)

	if applied.Email != nil && *applied.Email != student.Email {
		if _, err := s.students.FindByEmail(ctx, *applied.Email); err == nil {
			return nil, fmt.Errorf("email already exists: %w", apperror.ErrValidation)
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		student.Email = *applied.Email
	}
	if applied.RollNumber != nil && *applied.RollNumber != student.RollNumber {
		if _, err := s.students.FindByRollNumber(ctx, *applied.RollNumber); err == nil {
			return nil, fmt.Errorf("roll number already exists: %w", apperror.ErrValidation)
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		student.RollNumber = *applied.RollNumber
	}
	if applied.Name != nil {
		student.Name = *applied.Name
	}
	if applied.Phone != nil {
		student.Phone = applied.Phone
	}
	if applied.Address != nil {
		student.Address = applied.Address
	}
	if applied.DateOfBirth != nil {
		student.DateOfBirth = applied.DateOfBirth
	}
	if applied.Department != nil {
		student.Department = *applied.Department
	}
	if applied.Year != nil {
		student.Year = *applied.Year
	}
	if applied.Semester != nil {
		student.Semester = applied.Semester
	}
	if applied.Attendance != nil {
		student.Attendance = *applied.Attendance
	}
	if applied.Status != nil {
		student.Status = *applied.Status
	}

	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}

	s.reindex(student)
	classifyLoans(student, time.Now())
	return student, nil
}

func (s *studentService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if err := policy.Authorize(actor, id, policy.ActionDeleteStudent); err != nil {
		return err
	}

	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteStudent(id.String()); err != nil {
			log.Printf("failed to remove student %s from index: %v", id, err)
		}
	}
	return nil
}

func (s *studentService) UploadPhoto(ctx context.Context, actor policy.Actor, id uuid.UUID, photo PhotoFile) (string, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := policy.Authorize(actor, student.ID, policy.ActionUploadPhoto); err != nil {
		return "", err
	}

	if photo.Reader == nil {
		return "", fmt.Errorf("photo file is required: %w", apperror.ErrValidation)
	}
	if s.photoStorage == nil {
		return "", fmt.Errorf("photo storage is not configured: %w", apperror.ErrStorage)
	}

	url, err := s.photoStorage.UploadPhoto(ctx, photo.Reader, s.uploadFolder, photo.FileName)
	if err != nil {
		return "", err
	}

	oldURL := student.PhotoURL
	student.PhotoURL = &url
	if err := s.students.Update(ctx, student); err != nil {
		return "", err
	}

	// Best effort; an orphaned photo in storage is not worth failing over.
	if oldURL != nil && *oldURL != "" {
		if err := s.photoStorage.DeletePhoto(ctx, *oldURL); err != nil {
			log.Printf("failed to delete previous photo for %s: %v", id, err)
		}
	}

	return url, nil
}

func (s *studentService) Stats(ctx context.Context, actor policy.Actor) (*StatsOverview, error) {
	if err := policy.Authorize(actor, uuid.Nil, policy.ActionViewStats); err != nil {
		return nil, err
	}

	total, err := s.students.Count(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.students.CountByStatus(ctx, model.StudentStatusActive)
	if err != nil {
		return nil, err
	}
	departments, err := s.students.DistinctDepartments(ctx)
	if err != nil {
		return nil, err
	}
	averages, err := s.students.AverageMarksPerStudent(ctx)
	if err != nil {
		return nil, err
	}

	// Pass percentage counts students whose grade average reaches 50,
	// against the whole student body. Students with no grades count as
	// not passing.
	passCount := 0
	for _, avg := range averages {
		if avg >= 50 {
			passCount++
		}
	}
	passPercentage := 0.0
	if total > 0 {
		passPercentage = float64(passCount) / float64(total) * 100
	}

	return &StatsOverview{
		TotalStudents:  total,
		ActiveStudents: active,
		Departments:    len(departments),
		PassPercentage: passPercentage,
	}, nil
}

func (s *studentService) reindex(student *model.Student) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexStudent(student); err != nil {
		log.Printf("failed to index student %s: %v", student.ID, err)
	}
}

// classifyLoans rewrites every embedded loan's status to its effective value
// at the given instant before the record leaves the service layer.
func classifyLoans(student *model.Student, now time.Time) {
	for i := range student.Loans {
		student.Loans[i].Status = library.Classify(student.Loans[i], now)
	}
}
