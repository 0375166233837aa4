package service

import (
	"context"
	"testing"

	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeService_AdminOnly(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewGradeService(repo)
	student := seedStudent(t, repo)

	input := GradeInput{Subject: "Databases", Marks: 72, Grade: "B"}

	// Students cannot grade, not even themselves.
	_, err := svc.Add(context.Background(), ownerActor(student.ID), student.ID, input)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	grade, err := svc.Add(context.Background(), adminActor(), student.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Databases", grade.Subject)
	assert.Equal(t, student.ID, grade.StudentID)
}

func TestGradeService_UpdateAndDelete(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewGradeService(repo)
	student := seedStudent(t, repo)
	admin := adminActor()

	grade, err := svc.Add(context.Background(), admin, student.ID, GradeInput{
		Subject: "Networks", Marks: 60, Grade: "C",
	})
	require.NoError(t, err)

	marks := 85.0
	letter := "A"
	updated, err := svc.Update(context.Background(), admin, student.ID, grade.ID, GradeUpdate{
		Marks: &marks,
		Grade: &letter,
	})
	require.NoError(t, err)
	assert.Equal(t, 85.0, updated.Marks)
	assert.Equal(t, "A", updated.Grade)
	assert.Equal(t, "Networks", updated.Subject, "unset fields untouched")

	err = svc.Delete(context.Background(), ownerActor(student.ID), student.ID, grade.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), admin, student.ID, grade.ID))

	_, err = repo.FindGrade(context.Background(), student.ID, grade.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProjectService_OwnerHasFullRights(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewProjectService(repo)
	student := seedStudent(t, repo)
	owner := ownerActor(student.ID)

	project, err := svc.Add(context.Background(), owner, student.ID, ProjectInput{
		Title:        "Compiler",
		Technologies: []string{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusOngoing, project.Status)

	// The generic update path lets the owner set grade and status.
	grade := "A"
	status := model.ProjectStatusSubmitted
	updated, err := svc.Update(context.Background(), owner, student.ID, project.ID, ProjectUpdate{
		Grade:  &grade,
		Status: &status,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Grade)
	assert.Equal(t, "A", *updated.Grade)
	assert.Equal(t, model.ProjectStatusSubmitted, updated.Status)
	assert.NotNil(t, updated.SubmittedDate, "submission stamps the date")

	require.NoError(t, svc.Delete(context.Background(), owner, student.ID, project.ID))
}

func TestProjectService_ForeignStudentDenied(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewProjectService(repo)
	student := seedStudent(t, repo)

	_, err := svc.Add(context.Background(), ownerActor(uuid.New()), student.ID, ProjectInput{Title: "X"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
