package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// MaintenanceHandler exposes the reconciliation and orphan synthesis sweeps
// and filter cache invalidation
type MaintenanceHandler struct {
	BaseHandler
	reconciliationService services.ReconciliationService
	orphanService         services.OrphanService
	filterService         services.FilterService
}

func NewMaintenanceHandler(
	reconciliationService services.ReconciliationService,
	orphanService services.OrphanService,
	filterService services.FilterService,
	logger utils.Logger,
) *MaintenanceHandler {
	return &MaintenanceHandler{
		BaseHandler:           NewBaseHandler(logger),
		reconciliationService: reconciliationService,
		orphanService:         orphanService,
		filterService:         filterService,
	}
}

// Reconcile restores progress completeness; an empty body sweeps everything
// @Router /maintenance/reconcile [post]
func (h *MaintenanceHandler) Reconcile(c *gin.Context) {
	var scope repositories.ReconcileScope
	if err := c.ShouldBindJSON(&scope); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Reconciliation requested",
		"assignment_id", scope.AssignmentID,
		"class_id", scope.ClassID)

	result, err := h.reconciliationService.Reconcile(c.Request.Context(), scope)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Synthesize covers orphan scores; without score ids every score is scanned
// @Router /maintenance/synthesize [post]
func (h *MaintenanceHandler) Synthesize(c *gin.Context) {
	var req services.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	var (
		result *services.SynthesisResult
		err    error
	)
	if len(req.ScoreIDs) > 0 {
		result, err = h.orphanService.SynthesizeByIDs(c.Request.Context(), req.ScoreIDs)
	} else {
		result, err = h.orphanService.SynthesizeAll(c.Request.Context())
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// InvalidateFilters drops memoized option sets after catalog imports; without
// a hierarchy query every hierarchy is cleared
// @Param hierarchy query string false "content, teacher or roster"
// @Router /maintenance/filters/invalidate [post]
func (h *MaintenanceHandler) InvalidateFilters(c *gin.Context) {
	hierarchy := c.Query("hierarchy")
	if err := h.filterService.Invalidate(c.Request.Context(), hierarchy); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
