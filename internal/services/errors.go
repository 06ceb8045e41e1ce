package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/assignment-service/internal/errors"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Assignment specific errors
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrAssignmentAccessDenied = errors.New("access denied to assignment")
	ErrContentNotFound        = errors.New("referenced content not found")
	ErrClassNotFound          = errors.New("class not found")
	ErrTeamNotFound           = errors.New("team not found")
	ErrSyntheticExists        = errors.New("synthetic assignment already exists for course and class")

	// Progress specific errors
	ErrProgressNotFound = errors.New("progress record not found")

	// Score specific errors
	ErrScoreNotFound  = errors.New("score record not found")
	ErrCourseNotFound = errors.New("course not found")

	// Personal event errors
	ErrPersonalEventNotFound     = errors.New("personal event not found")
	ErrPersonalEventAccessDenied = errors.New("access denied to personal event")

	// Filter errors
	ErrUnknownHierarchy = errors.New("unknown filter hierarchy")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== ERROR KINDS =====

// ErrorKind is the coarse classification handlers map to status codes.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindInternal   ErrorKind = "INTERNAL"
)

// KindOf classifies err. A nil error has no kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return KindValidation
	case IsNotFound(err):
		return KindNotFound
	case IsConflict(err):
		return KindConflict
	case IsUnauthorized(err):
		return KindForbidden
	default:
		return KindInternal
	}
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrTeamNotFound) ||
		errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrScoreNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrPersonalEventNotFound) ||
		errors.Is(err, ErrUnknownHierarchy)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAssignmentAccessDenied) ||
		errors.Is(err, ErrPersonalEventAccessDenied) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSyntheticExists) ||
		repositories.IsUniqueViolation(err)
}
