package handler

import (
	"net/http"

	"anoa.com/studentrecords/internal/service"
	"anoa.com/studentrecords/pkg/response"
	"anoa.com/studentrecords/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) Add(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input service.ProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	project, err := h.projectService.Add(c.Request.Context(), actor, studentID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Project added successfully", "project": project})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}

	var input service.ProjectUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), actor, studentID, projectID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully", "project": project})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), actor, studentID, projectID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
