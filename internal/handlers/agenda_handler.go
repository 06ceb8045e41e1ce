package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/agenda"
	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AgendaHandler struct {
	BaseHandler
	agendaService services.AgendaService
	now           func() time.Time
}

func NewAgendaHandler(agendaService services.AgendaService, logger utils.Logger, now func() time.Time) *AgendaHandler {
	if now == nil {
		now = time.Now
	}
	return &AgendaHandler{
		BaseHandler:   NewBaseHandler(logger),
		agendaService: agendaService,
		now:           now,
	}
}

// GetAgenda returns the caller's merged timeline. Teachers may look at the
// agenda of a learner in one of their classes through learner_id.
// @Param category query string false "all, teacher or personal"
// @Param status query string false "all, pending or completed"
// @Router /agenda [get]
func (h *AgendaHandler) GetAgenda(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var filters agenda.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.handleServiceError(c, services.ValidationErrors{*services.NewValidationError("query", err.Error(), nil)})
		return
	}

	learnerID := caller.ID
	if requested := c.Query("learner_id"); requested != "" && requested != caller.ID {
		if err := h.agendaService.AuthorizeView(c.Request.Context(), caller, requested); err != nil {
			h.handleServiceError(c, err)
			return
		}
		learnerID = requested
	}

	resp, err := h.agendaService.BuildAgenda(c.Request.Context(), learnerID, filters, h.now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
