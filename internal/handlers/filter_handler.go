package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type FilterHandler struct {
	BaseHandler
	filterService services.FilterService
}

func NewFilterHandler(filterService services.FilterService, logger utils.Logger) *FilterHandler {
	return &FilterHandler{
		BaseHandler:   NewBaseHandler(logger),
		filterService: filterService,
	}
}

// ListHierarchies names the filter hierarchies that can be resolved
// @Router /filters [get]
func (h *FilterHandler) ListHierarchies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hierarchies": h.filterService.Hierarchies()})
}

// ResolveFilters returns every level's options and pruned selection
// @Router /filters/{hierarchy}/resolve [post]
func (h *FilterHandler) ResolveFilters(c *gin.Context) {
	hierarchy := ParseStringIDParam(c, "hierarchy")
	if hierarchy == "" {
		return
	}

	var req services.FilterResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.filterService.Resolve(c.Request.Context(), hierarchy, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
