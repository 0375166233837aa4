package handler

import (
	"net/http"

	"anoa.com/studentrecords/internal/service"
	"anoa.com/studentrecords/pkg/response"
	"anoa.com/studentrecords/pkg/validator"
	"github.com/gin-gonic/gin"
)

type GradeHandler struct {
	gradeService service.GradeService
}

func NewGradeHandler(gradeService service.GradeService) *GradeHandler {
	return &GradeHandler{gradeService: gradeService}
}

func (h *GradeHandler) Add(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input service.GradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	grade, err := h.gradeService.Add(c.Request.Context(), actor, studentID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Grade added successfully", "grade": grade})
}

func (h *GradeHandler) Update(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	gradeID, ok := pathID(c, "gradeId")
	if !ok {
		return
	}

	var input service.GradeUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	grade, err := h.gradeService.Update(c.Request.Context(), actor, studentID, gradeID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Grade updated successfully", "grade": grade})
}

func (h *GradeHandler) Delete(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	gradeID, ok := pathID(c, "gradeId")
	if !ok {
		return
	}

	if err := h.gradeService.Delete(c.Request.Context(), actor, studentID, gradeID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Grade deleted successfully"})
}
