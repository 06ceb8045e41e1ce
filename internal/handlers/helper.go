package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/gin-gonic/gin"
)

// parseIDParam writes a 400 and returns 0 when the param is not a positive id
func parseIDParam(c *gin.Context, param string) uint {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		details := "ID must be a positive integer"
		if err != nil {
			details = err.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: details,
		})
		return 0
	}
	return uint(id)
}

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseUintQueryPtr(c *gin.Context, param string) *uint {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(value)
	return &id
}

func parseStringQueryPtr(c *gin.Context, param string) *string {
	value := strings.TrimSpace(c.Query(param))
	if value == "" {
		return nil
	}
	return &value
}

// parseTimeQuery accepts RFC3339; ok is false after a 400 was written
func parseTimeQuery(c *gin.Context, param string) (t *time.Time, ok bool) {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil, true
	}
	value, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "expected RFC3339 timestamp",
		})
		return nil, false
	}
	return &value, true
}

// currentCaller returns the caller set by the auth middleware
func currentCaller(c *gin.Context) (models.Caller, bool) {
	value, exists := c.Get(callerKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return models.Caller{}, false
	}
	caller, ok := value.(models.Caller)
	if !ok || caller.ID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return models.Caller{}, false
	}
	return caller, true
}
