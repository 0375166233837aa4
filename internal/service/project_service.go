package service

import (
	"context"
	"time"

	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/internal/policy"
	"anoa.com/studentrecords/internal/repository"
	"github.com/google/uuid"
)

type ProjectInput struct {
	Title        string   `json:"title" binding:"required"`
	Description  *string  `json:"description"`
	Technologies []string `json:"technologies"`
	GithubLink   *string  `json:"githubLink"`
	LiveLink     *string  `json:"liveLink"`
	Status       *string  `json:"status" binding:"omitempty,oneof=ongoing completed submitted"`
}

// ProjectUpdate covers the generic update path, grade and status included.
// The owning student may set their own project's grade through here; see
// DESIGN.md for why that asymmetry with grades is intentional.
type ProjectUpdate struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Technologies  []string   `json:"technologies"`
	GithubLink    *string    `json:"githubLink"`
	LiveLink      *string    `json:"liveLink"`
	Status        *string    `json:"status" binding:"omitempty,oneof=ongoing completed submitted"`
	Grade         *string    `json:"grade"`
	SubmittedDate *time.Time `json:"submittedDate"`
}

type ProjectService interface {
	Add(ctx context.Context, actor policy.Actor, studentID uuid.UUID, input ProjectInput) (*model.Project, error)
	Update(ctx context.Context, actor policy.Actor, studentID, projectID uuid.UUID, input ProjectUpdate) (*model.Project, error)
	Delete(ctx context.Context, actor policy.Actor, studentID, projectID uuid.UUID) error
}

type projectService struct {
	students repository.StudentRepository
}

func NewProjectService(students repository.StudentRepository) ProjectService {
	return &projectService{students: students}
}

func (s *projectService) Add(ctx context.Context, actor policy.Actor, studentID uuid.UUID, input ProjectInput) (*model.Project, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionWriteProject); err != nil {
		return nil, err
	}

	project := &model.Project{
		Title:        input.Title,
		Description:  input.Description,
		Technologies: input.Technologies,
		GithubLink:   input.GithubLink,
		LiveLink:     input.LiveLink,
		Status:       model.ProjectStatusOngoing,
	}
	if input.Status != nil {
		project.Status = *input.Status
	}

	if err := s.students.AddProject(ctx, studentID, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Update(ctx context.Context, actor policy.Actor, studentID, projectID uuid.UUID, input ProjectUpdate) (*model.Project, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionWriteProject); err != nil {
		return nil, err
	}

	project, err := s.students.FindProject(ctx, studentID, projectID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		project.Title = *input.Title
	}
	if input.Description != nil {
		project.Description = input.Description
	}
	if input.Technologies != nil {
		project.Technologies = input.Technologies
	}
	if input.GithubLink != nil {
		project.GithubLink = input.GithubLink
	}
	if input.LiveLink != nil {
		project.LiveLink = input.LiveLink
	}
	if input.Status != nil {
		project.Status = *input.Status
		if *input.Status == model.ProjectStatusSubmitted && project.SubmittedDate == nil {
			now := time.Now()
			project.SubmittedDate = &now
		}
	}
	if input.Grade != nil {
		project.Grade = input.Grade
	}
	if input.SubmittedDate != nil {
		project.SubmittedDate = input.SubmittedDate
	}

	if err := s.students.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, actor policy.Actor, studentID, projectID uuid.UUID) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return err
	}
	if err := policy.Authorize(actor, studentID, policy.ActionWriteProject); err != nil {
		return err
	}

	return s.students.DeleteProject(ctx, studentID, projectID)
}
