package service

import (
	"context"
	"fmt"

	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/internal/repository"
	"anoa.com/studentrecords/pkg/apperror"
	"github.com/google/uuid"
)

// fakeStudentRepo is an in-memory StudentRepository for service tests.
type fakeStudentRepo struct {
	students map[uuid.UUID]*model.Student
	grades   map[uuid.UUID]*model.Grade
	projects map[uuid.UUID]*model.Project
	loans    map[uuid.UUID]*model.BookLoan
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{
		students: make(map[uuid.UUID]*model.Student),
		grades:   make(map[uuid.UUID]*model.Grade),
		projects: make(map[uuid.UUID]*model.Project),
		loans:    make(map[uuid.UUID]*model.BookLoan),
	}
}

var _ repository.StudentRepository = (*fakeStudentRepo)(nil)

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *model.Student) error {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	copied := *student
	f.students[student.ID] = &copied
	return nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, notFound("student")
	}
	copied := *student
	copied.Loans = nil
	for _, loan := range f.loans {
		if loan.StudentID == id {
			copied.Loans = append(copied.Loans, *loan)
		}
	}
	copied.Grades = nil
	for _, grade := range f.grades {
		if grade.StudentID == id {
			copied.Grades = append(copied.Grades, *grade)
		}
	}
	copied.Projects = nil
	for _, project := range f.projects {
		if project.StudentID == id {
			copied.Projects = append(copied.Projects, *project)
		}
	}
	return &copied, nil
}

func (f *fakeStudentRepo) FindByRollNumber(ctx context.Context, rollNumber string) (*model.Student, error) {
	for _, student := range f.students {
		if student.RollNumber == rollNumber {
			copied := *student
			return &copied, nil
		}
	}
	return nil, notFound("student")
}

func (f *fakeStudentRepo) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	for _, student := range f.students {
		if student.Email == email {
			copied := *student
			return &copied, nil
		}
	}
	return nil, notFound("student")
}

func (f *fakeStudentRepo) FindAll(ctx context.Context, filter repository.ListFilter) ([]model.Student, error) {
	var out []model.Student
	for _, student := range f.students {
		if filter.Department != "" && student.Department != filter.Department {
			continue
		}
		if filter.Year != 0 && student.Year != filter.Year {
			continue
		}
		if filter.Status != "" && student.Status != filter.Status {
			continue
		}
		out = append(out, *student)
	}
	return out, nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *model.Student) error {
	if _, ok := f.students[student.ID]; !ok {
		return notFound("student")
	}
	copied := *student
	f.students[student.ID] = &copied
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.students[id]; !ok {
		return notFound("student")
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.students)), nil
}

func (f *fakeStudentRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	for _, student := range f.students {
		if student.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeStudentRepo) DistinctDepartments(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, student := range f.students {
		if !seen[student.Department] {
			seen[student.Department] = true
			out = append(out, student.Department)
		}
	}
	return out, nil
}

func (f *fakeStudentRepo) AverageMarksPerStudent(ctx context.Context) (map[uuid.UUID]float64, error) {
	sums := make(map[uuid.UUID]float64)
	counts := make(map[uuid.UUID]int)
	for _, grade := range f.grades {
		sums[grade.StudentID] += grade.Marks
		counts[grade.StudentID]++
	}
	averages := make(map[uuid.UUID]float64)
	for id, sum := range sums {
		averages[id] = sum / float64(counts[id])
	}
	return averages, nil
}

func (f *fakeStudentRepo) AddGrade(ctx context.Context, studentID uuid.UUID, grade *model.Grade) error {
	if grade.ID == uuid.Nil {
		grade.ID = uuid.New()
	}
	grade.StudentID = studentID
	copied := *grade
	f.grades[grade.ID] = &copied
	return nil
}

func (f *fakeStudentRepo) UpdateGrade(ctx context.Context, grade *model.Grade) error {
	if _, ok := f.grades[grade.ID]; !ok {
		return notFound("grade")
	}
	copied := *grade
	f.grades[grade.ID] = &copied
	return nil
}

func (f *fakeStudentRepo) DeleteGrade(ctx context.Context, studentID, gradeID uuid.UUID) error {
	grade, ok := f.grades[gradeID]
	if !ok || grade.StudentID != studentID {
		return notFound("grade")
	}
	delete(f.grades, gradeID)
	return nil
}

func (f *fakeStudentRepo) FindGrade(ctx context.Context, studentID, gradeID uuid.UUID) (*model.Grade, error) {
	grade, ok := f.grades[gradeID]
	if !ok || grade.StudentID != studentID {
		return nil, notFound("grade")
	}
	copied := *grade
	return &copied, nil
}

func (f *fakeStudentRepo) AddProject(ctx context.Context, studentID uuid.UUID, project *model.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.StudentID = studentID
	copied := *project
	f.projects[project.ID] = &copied
	return nil
}

func (f *fakeStudentRepo) UpdateProject(ctx context.Context, project *model.Project) error {
	if _, ok := f.projects[project.ID]; !ok {
		return notFound("project")
	}
	copied := *project
	f.projects[project.ID] = &copied
	return nil
}

func (f *fakeStudentRepo) DeleteProject(ctx context.Context, studentID, projectID uuid.UUID) error {
	project, ok := f.projects[projectID]
	if !ok || project.StudentID != studentID {
		return notFound("project")
	}
	delete(f.projects, projectID)
	return nil
}

func (f *fakeStudentRepo) FindProject(ctx context.Context, studentID, projectID uuid.UUID) (*model.Project, error) {
	project, ok := f.projects[projectID]
	if !ok || project.StudentID != studentID {
		return nil, notFound("project")
	}
	copied := *project
	return &copied, nil
}

func (f *fakeStudentRepo) AddLoan(ctx context.Context, studentID uuid.UUID, loan *model.BookLoan) error {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	loan.StudentID = studentID
	copied := *loan
	f.loans[loan.ID] = &copied
	return nil
}

func (f *fakeStudentRepo) UpdateLoan(ctx context.Context, loan *model.BookLoan) error {
	if _, ok := f.loans[loan.ID]; !ok {
		return notFound("loan")
	}
	copied := *loan
	f.loans[loan.ID] = &copied
	return nil
}

func (f *fakeStudentRepo) FindLoan(ctx context.Context, studentID, loanID uuid.UUID) (*model.BookLoan, error) {
	loan, ok := f.loans[loanID]
	if !ok || loan.StudentID != studentID {
		return nil, notFound("loan")
	}
	copied := *loan
	return &copied, nil
}

func (f *fakeStudentRepo) LoansByStudent(ctx context.Context, studentID uuid.UUID) ([]model.BookLoan, error) {
	var out []model.BookLoan
	for _, loan := range f.loans {
		if loan.StudentID == studentID {
			out = append(out, *loan)
		}
	}
	return out, nil
}

func (f *fakeStudentRepo) UnreturnedLoans(ctx context.Context) ([]model.BookLoan, error) {
	var out []model.BookLoan
	for _, loan := range f.loans {
		if loan.ReturnedDate == nil {
			out = append(out, *loan)
		}
	}
	return out, nil
}

// fakeUserRepo is an in-memory UserRepository for auth tests.
type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
	roles map[string]*model.Role
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[uuid.UUID]*model.User),
		roles: map[string]*model.Role{
			model.RoleAdmin:   {ID: 1, Name: model.RoleAdmin},
			model.RoleStudent: {ID: 2, Name: model.RoleStudent},
		},
	}
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.RoleID != nil {
		for _, role := range f.roles {
			if role.ID == *user.RoleID {
				user.Role = *role
			}
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, notFound("user")
	}
	user, ok := f.users[parsed]
	if !ok {
		return nil, notFound("user")
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, notFound("user")
}

func (f *fakeUserRepo) FindByStudentID(ctx context.Context, studentID uuid.UUID) (*model.User, error) {
	for _, user := range f.users {
		if user.StudentID != nil && *user.StudentID == studentID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, notFound("user")
}

func (f *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	role, ok := f.roles[name]
	if !ok {
		return nil, notFound("role")
	}
	return role, nil
}
