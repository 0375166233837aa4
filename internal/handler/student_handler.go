package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"anoa.com/studentrecords/internal/middleware"
	"anoa.com/studentrecords/internal/policy"
	"anoa.com/studentrecords/internal/repository"
	"anoa.com/studentrecords/internal/service"
	"anoa.com/studentrecords/pkg/apperror"
	"anoa.com/studentrecords/pkg/response"
	"anoa.com/studentrecords/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StudentHandler struct {
	studentService service.StudentService
}

func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// requestActor pulls the caller identity or aborts with 401.
func requestActor(c *gin.Context) (policy.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return policy.Actor{}, false
	}
	return actor, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *StudentHandler) List(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	filter := repository.ListFilter{
		Search:     c.Query("search"),
		Department: c.Query("department"),
		Status:     c.Query("status"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return
		}
		filter.Year = year
	}

	students, err := h.studentService.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (h *StudentHandler) Get(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) Create(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	var input service.CreateStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), actor, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Student created successfully", "student": student})
}

func (h *StudentHandler) Update(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input policy.StudentUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Student updated successfully", "student": student})
}

func (h *StudentHandler) Delete(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Student deleted successfully"})
}

func (h *StudentHandler) UploadPhoto(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.ResponseError(c, fmt.Errorf("photo file is required: %w", apperror.ErrValidation))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo"})
		return
	}
	defer file.Close()

	url, err := h.studentService.UploadPhoto(c.Request.Context(), actor, id, service.PhotoFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo uploaded successfully", "photoUrl": url})
}

func (h *StudentHandler) Stats(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	stats, err := h.studentService.Stats(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
