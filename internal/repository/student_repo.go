package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/studentrecords/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the student directory listing. Search matches name,
// email or roll number case-insensitively; when IDs is set (hits from the
// search index) it replaces the Search clause.
type ListFilter struct {
	Search     string
	IDs        []uuid.UUID
	Department string
	Year       int
	Status     string
}

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	FindByRollNumber(ctx context.Context, rollNumber string) (*model.Student, error)
	FindByEmail(ctx context.Context, email string) (*model.Student, error)
	FindAll(ctx context.Context, filter ListFilter) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	DistinctDepartments(ctx context.Context) ([]string, error)
	AverageMarksPerStudent(ctx context.Context) (map[uuid.UUID]float64, error)

	AddGrade(ctx context.Context, studentID uuid.UUID, grade *model.Grade) error
	UpdateGrade(ctx context.Context, grade *model.Grade) error
	DeleteGrade(ctx context.Context, studentID, gradeID uuid.UUID) error
	FindGrade(ctx context.Context, studentID, gradeID uuid.UUID) (*model.Grade, error)

	AddProject(ctx context.Context, studentID uuid.UUID, project *model.Project) error
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, studentID, projectID uuid.UUID) error
	FindProject(ctx context.Context, studentID, projectID uuid.UUID) (*model.Project, error)

	AddLoan(ctx context.Context, studentID uuid.UUID, loan *model.BookLoan) error
	UpdateLoan(ctx context.Context, loan *model.BookLoan) error
	FindLoan(ctx context.Context, studentID, loanID uuid.UUID) (*model.BookLoan, error)
	LoansByStudent(ctx context.Context, studentID uuid.UUID) ([]model.BookLoan, error)
	UnreturnedLoans(ctx context.Context) ([]model.BookLoan, error)
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *model.Student) error {
	if err := r.db.WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("create student: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("Grades").
		Preload("Projects").
		Preload("Loans").
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, fmt.Errorf("find student: %w", translate(err))
	}
	return &student, nil
}

func (r *studentRepository) FindByRollNumber(ctx context.Context, rollNumber string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).Where("roll_number = ?", rollNumber).First(&student).Error
	if err != nil {
		return nil, fmt.Errorf("find student by roll number: %w", translate(err))
	}
	return &student, nil
}

func (r *studentRepository) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&student).Error
	if err != nil {
		return nil, fmt.Errorf("find student by email: %w", translate(err))
	}
	return &student, nil
}

func (r *studentRepository) FindAll(ctx context.Context, filter ListFilter) ([]model.Student, error) {
	query := r.db.WithContext(ctx).Model(&model.Student{})

	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	} else if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"name ILIKE ? OR email ILIKE ? OR roll_number ILIKE ?",
			like, like, like,
		)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var students []model.Student
	if err := query.Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", translate(err))
	}
	return students, nil
}

func (r *studentRepository) Update(ctx context.Context, student *model.Student) error {
	if err := r.db.WithContext(ctx).Save(student).Error; err != nil {
		return fmt.Errorf("update student: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Student{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete student: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete student: %w", translate(gorm.ErrRecordNotFound))
	}
	return nil
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Student{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count students: %w", translate(err))
	}
	return count, nil
}

func (r *studentRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).Where("status = ?", status).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count students by status: %w", translate(err))
	}
	return count, nil
}

func (r *studentRepository) DistinctDepartments(ctx context.Context) ([]string, error) {
	var departments []string
	err := r.db.WithContext(ctx).Model(&model.Student{}).Distinct("department").Pluck("department", &departments).Error
	if err != nil {
		return nil, fmt.Errorf("distinct departments: %w", translate(err))
	}
	return departments, nil
}

func (r *studentRepository) AverageMarksPerStudent(ctx context.Context) (map[uuid.UUID]float64, error) {
	var rows []struct {
		StudentID uuid.UUID
		Avg       float64
	}
	err := r.db.WithContext(ctx).Model(&model.Grade{}).
		Select("student_id, AVG(marks) as avg").
		Group("student_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("average marks: %w", translate(err))
	}

	averages := make(map[uuid.UUID]float64, len(rows))
	for _, row := range rows {
		averages[row.StudentID] = row.Avg
	}
	return averages, nil
}

// touchStudent bumps the parent's updated_at inside the same transaction as
// a sub-record write, matching the single-profile atomicity of the store.
func touchStudent(tx *gorm.DB, studentID uuid.UUID) error {
	return tx.Model(&model.Student{}).
		Where("id = ?", studentID).
		Update("updated_at", time.Now()).Error
}

func (r *studentRepository) AddGrade(ctx context.Context, studentID uuid.UUID, grade *model.Grade) error {
	grade.StudentID = studentID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(grade).Error; err != nil {
			return err
		}
		return touchStudent(tx, studentID)
	})
	if err != nil {
		return fmt.Errorf("add grade: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) UpdateGrade(ctx context.Context, grade *model.Grade) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(grade).Error; err != nil {
			return err
		}
		return touchStudent(tx, grade.StudentID)
	})
	if err != nil {
		return fmt.Errorf("update grade: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) DeleteGrade(ctx context.Context, studentID, gradeID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND student_id = ?", gradeID, studentID).Delete(&model.Grade{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return touchStudent(tx, studentID)
	})
	if err != nil {
		return fmt.Errorf("delete grade: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) FindGrade(ctx context.Context, studentID, gradeID uuid.UUID) (*model.Grade, error) {
	var grade model.Grade
	err := r.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", gradeID, studentID).
		First(&grade).Error
	if err != nil {
		return nil, fmt.Errorf("find grade: %w", translate(err))
	}
	return &grade, nil
}

func (r *studentRepository) AddProject(ctx context.Context, studentID uuid.UUID, project *model.Project) error {
	project.StudentID = studentID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		return touchStudent(tx, studentID)
	})
	if err != nil {
		return fmt.Errorf("add project: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) UpdateProject(ctx context.Context, project *model.Project) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return err
		}
		return touchStudent(tx, project.StudentID)
	})
	if err != nil {
		return fmt.Errorf("update project: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) DeleteProject(ctx context.Context, studentID, projectID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND student_id = ?", projectID, studentID).Delete(&model.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return touchStudent(tx, studentID)
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) FindProject(ctx context.Context, studentID, projectID uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", projectID, studentID).
		First(&project).Error
	if err != nil {
		return nil, fmt.Errorf("find project: %w", translate(err))
	}
	return &project, nil
}

func (r *studentRepository) AddLoan(ctx context.Context, studentID uuid.UUID, loan *model.BookLoan) error {
	loan.StudentID = studentID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(loan).Error; err != nil {
			return err
		}
		return touchStudent(tx, studentID)
	})
	if err != nil {
		return fmt.Errorf("add loan: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) UpdateLoan(ctx context.Context, loan *model.BookLoan) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(loan).Error; err != nil {
			return err
		}
		return touchStudent(tx, loan.StudentID)
	})
	if err != nil {
		return fmt.Errorf("update loan: %w", translate(err))
	}
	return nil
}

func (r *studentRepository) FindLoan(ctx context.Context, studentID, loanID uuid.UUID) (*model.BookLoan, error) {
	var loan model.BookLoan
	err := r.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", loanID, studentID).
		First(&loan).Error
	if err != nil {
		return nil, fmt.Errorf("find loan: %w", translate(err))
	}
	return &loan, nil
}

func (r *studentRepository) LoansByStudent(ctx context.Context, studentID uuid.UUID) ([]model.BookLoan, error) {
	var loans []model.BookLoan
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("borrowed_date DESC").
		Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", translate(err))
	}
	return loans, nil
}

func (r *studentRepository) UnreturnedLoans(ctx context.Context) ([]model.BookLoan, error) {
	var loans []model.BookLoan
	err := r.db.WithContext(ctx).
		Where("returned_date IS NULL").
		Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("list unreturned loans: %w", translate(err))
	}
	return loans, nil
}
