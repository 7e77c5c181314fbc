// internal/handlers/handlers.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

// currentUser reads the authenticated identity placed in the context by
// the auth middleware.
func currentUser(c *gin.Context) (uuid.UUID, bool, bool) {
	idStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return uuid.Nil, false, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false, false
	}

	role, _ := utils.GetUserRoleFromContext(c)
	return id, role == string(models.UserRoleAdmin), true
}

// parseUUIDParam reads a :param path segment as a UUID.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
