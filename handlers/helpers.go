package handlers

import (
	"thorbis-backend/search"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Error kinds surfaced to clients. Reads prefer graceful degradation over
// these; writes never silently degrade.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidCategories = "INVALID_CATEGORIES"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_ERROR"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// callerFrom builds the search-layer caller identity from whatever the auth
// middleware attached. Anonymous requests yield the zero caller.
func callerFrom(c *gin.Context) search.Caller {
	id, ok := c.Get("user_id")
	if !ok {
		return search.Caller{}
	}
	userID, ok := id.(uuid.UUID)
	if !ok {
		return search.Caller{}
	}
	role, _ := c.Get("user_role")
	roleStr, _ := role.(string)
	return search.Caller{ID: userID, Role: roleStr, Authenticated: true}
}
