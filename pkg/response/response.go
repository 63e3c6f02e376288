package response

import (
	"log"
	"net/http"

	"github.com/bookcircle-app/backend/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID retrieves the authenticated user ID from the context
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

// GetOptionalUserID returns the viewer's ID when the request carried an
// identity, nil otherwise. Read endpoints use it to resolve "your reaction".
func GetOptionalUserID(c *gin.Context) *uuid.UUID {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return nil
	}
	return &userID
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
