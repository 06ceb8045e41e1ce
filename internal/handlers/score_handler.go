package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScoreHandler struct {
	BaseHandler
	scoreService services.ScoreService
}

func NewScoreHandler(scoreService services.ScoreService, logger utils.Logger) *ScoreHandler {
	return &ScoreHandler{
		BaseHandler:  NewBaseHandler(logger),
		scoreService: scoreService,
	}
}

// RecordScore stores raw signals and returns the recomputed record. Teachers
// and the activity collaborator's service account only.
// @Router /scores [post]
func (h *ScoreHandler) RecordScore(c *gin.Context) {
	var req services.RecordScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	rec, err := h.scoreService.RecordRaw(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ComputeScore evaluates the aggregation without storing anything
// @Router /scores/compute [post]
func (h *ScoreHandler) ComputeScore(c *gin.Context) {
	var req services.ComputeScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	derived, err := h.scoreService.Compute(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, derived)
}

// GetScore returns one record; learners only see their own
// @Router /scores/{id} [get]
func (h *ScoreHandler) GetScore(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	rec, err := h.scoreService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if !caller.IsTeacher() && rec.StudentID != caller.ID {
		h.handleServiceError(c, services.NewPermissionError(caller.ID, id, "score", "read", "not the score owner"))
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListScores lists records; learners are scoped to their own
// @Router /scores [get]
func (h *ScoreHandler) ListScores(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	filters := repositories.ScoreFilters{
		StudentID: parseStringQueryPtr(c, "student_id"),
		CourseID:  parseUintQueryPtr(c, "course_id"),
		Limit:     parseIntQuery(c, "limit", 50),
		Offset:    parseIntQuery(c, "offset", 0),
	}
	if !caller.IsTeacher() {
		if filters.StudentID != nil && *filters.StudentID != caller.ID {
			h.handleServiceError(c, services.NewPermissionError(caller.ID, 0, "score", "list", "not the score owner"))
			return
		}
		filters.StudentID = &caller.ID
	}

	resp, err := h.scoreService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportCourseScores downloads the course's scores as an xlsx workbook
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /courses/{course_id}/scores/export [get]
func (h *ScoreHandler) ExportCourseScores(c *gin.Context) {
	courseID := parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	data, err := h.scoreService.ExportCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=course-%d-scores.xlsx", courseID))
	c.Data(http.StatusOK, xlsxContentType, data)
}
