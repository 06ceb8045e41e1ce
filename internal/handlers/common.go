package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Info(message, additionalFields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, additionalFields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, additionalFields...)
}

// requestLogger carries request_id, method and path from ContextLogger
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	logger := utils.GetLoggerFromContext(c, nil)
	if logger == nil {
		logger = h.logger.With(
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	}
	if userID := c.GetString("user_id"); userID != "" {
		logger = logger.With("user_id", userID)
	}
	return logger
}

// handleServiceError maps the service error taxonomy onto HTTP statuses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	switch kind {
	case services.KindValidation:
		var details interface{} = err.Error()
		var validationErrors services.ValidationErrors
		if errors.As(err, &validationErrors) {
			details = validationErrors
		}
		h.LogWarn(c, "Validation failed", "status_code", http.StatusBadRequest, "error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: details, Code: string(kind)})

	case services.KindNotFound:
		h.respondCoded(c, http.StatusNotFound, kind, err.Error(), err)

	case services.KindConflict:
		h.respondCoded(c, http.StatusConflict, kind, err.Error(), err)

	case services.KindForbidden:
		var permissionError *services.PermissionError
		if errors.As(err, &permissionError) {
			h.LogWarn(c, "Access denied", "status_code", http.StatusForbidden, "error", err.Error())
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Access denied",
				Code:    string(kind),
				Details: map[string]interface{}{
					"resource": permissionError.Resource,
					"action":   permissionError.Action,
					"reason":   permissionError.Reason,
				},
			})
			return
		}
		h.respondCoded(c, http.StatusForbidden, kind, "Access denied", err)

	default:
		h.respondCoded(c, http.StatusInternalServerError, services.KindInternal, "Internal server error", err)
	}
}

func (h *BaseHandler) respondCoded(c *gin.Context, status int, kind services.ErrorKind, message string, err error) {
	if status >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", status)
	} else {
		h.LogWarn(c, message, "status_code", status, "error", err.Error())
	}
	c.JSON(status, ErrorResponse{Message: message, Code: string(kind)})
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "assignment-service",
	})
}
