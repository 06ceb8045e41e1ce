package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(assignmentService services.AssignmentService, logger utils.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
	}
}

// CreateAssignment creates an assignment and its progress fan-out
// @Summary Create assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param assignment body services.CreateAssignmentRequest true "Assignment data"
// @Success 201 {object} services.AssignmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	resp, err := h.assignmentService.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetAssignment returns the assignment with its progress summary
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.assignmentService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListAssignments lists assignments with filters
// @Router /assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	filters := repositories.AssignmentFilters{
		TeacherID: parseStringQueryPtr(c, "teacher_id"),
		ClassID:   parseUintQueryPtr(c, "class_id"),
		CourseID:  parseUintQueryPtr(c, "course_id"),
		ParentID:  parseUintQueryPtr(c, "parent_id"),
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if target := c.Query("target_type"); target != "" {
		t := models.TargetType(target)
		filters.TargetType = &t
	}

	var ok bool
	if filters.DueFrom, ok = parseTimeQuery(c, "due_from"); !ok {
		return
	}
	if filters.DueTo, ok = parseTimeQuery(c, "due_to"); !ok {
		return
	}

	resp, err := h.assignmentService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteAssignment removes the assignment, its children and their progress
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProgress lists the per-learner progress of an assignment
// @Router /assignments/{id}/progress [get]
func (h *AssignmentHandler) ListProgress(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	records, err := h.assignmentService.ListProgress(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// UpdateProgress sets the progress status of one learner
// @Router /assignments/{id}/progress/{student_id} [put]
func (h *AssignmentHandler) UpdateProgress(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	var req services.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	if err := h.assignmentService.UpdateProgressStatus(c.Request.Context(), id, studentID, &req, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Progress updated"})
}
