package response

import (
	"log"
	"net/http"

	"anoa.com/studentrecords/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID retrieves the authenticated account ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Storage and other internal failures are logged in full but surfaced
	// with a generic message so driver detail never reaches the caller.
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
