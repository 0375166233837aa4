package handler

import (
	"net/http"

	"anoa.com/studentrecords/internal/library"
	"anoa.com/studentrecords/internal/policy"
	"anoa.com/studentrecords/internal/service"
	"anoa.com/studentrecords/pkg/response"
	"anoa.com/studentrecords/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LibraryHandler struct {
	libraryService service.LibraryService
}

func NewLibraryHandler(libraryService service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

func (h *LibraryHandler) Borrow(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	h.borrow(c, actor, studentID)
}

func (h *LibraryHandler) Return(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	loanID, ok := pathID(c, "loanId")
	if !ok {
		return
	}

	h.returnLoan(c, actor, studentID, loanID)
}

func (h *LibraryHandler) Borrowed(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	h.list(c, actor, studentID)
}

// BorrowOwn serves POST /loans/borrow for callers with a linked student record.
func (h *LibraryHandler) BorrowOwn(c *gin.Context) {
	actor, studentID, ok := ownStudent(c)
	if !ok {
		return
	}

	h.borrow(c, actor, studentID)
}

// ReturnOwn serves PUT /loans/:loanId/return.
func (h *LibraryHandler) ReturnOwn(c *gin.Context) {
	actor, studentID, ok := ownStudent(c)
	if !ok {
		return
	}
	loanID, ok := pathID(c, "loanId")
	if !ok {
		return
	}

	h.returnLoan(c, actor, studentID, loanID)
}

// ListOwn serves GET /loans. scope=all includes returned loans.
func (h *LibraryHandler) ListOwn(c *gin.Context) {
	actor, studentID, ok := ownStudent(c)
	if !ok {
		return
	}

	if c.DefaultQuery("scope", "active") == "all" {
		loans, err := h.libraryService.History(c.Request.Context(), actor, studentID)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, loans)
		return
	}

	h.list(c, actor, studentID)
}

func (h *LibraryHandler) borrow(c *gin.Context, actor policy.Actor, studentID uuid.UUID) {
	var input library.BorrowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	loan, err := h.libraryService.Borrow(c.Request.Context(), actor, studentID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Book borrowed successfully", "loan": loan})
}

func (h *LibraryHandler) returnLoan(c *gin.Context, actor policy.Actor, studentID, loanID uuid.UUID) {
	loan, err := h.libraryService.Return(c.Request.Context(), actor, studentID, loanID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book returned successfully", "loan": loan})
}

func (h *LibraryHandler) list(c *gin.Context, actor policy.Actor, studentID uuid.UUID) {
	loans, err := h.libraryService.Borrowed(c.Request.Context(), actor, studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, loans)
}

// ownStudent resolves the caller's linked student record or aborts.
func ownStudent(c *gin.Context) (policy.Actor, uuid.UUID, bool) {
	actor, ok := requestActor(c)
	if !ok {
		return policy.Actor{}, uuid.Nil, false
	}
	if actor.StudentID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "account has no linked student record"})
		return policy.Actor{}, uuid.Nil, false
	}
	return actor, *actor.StudentID, true
}
