package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// PersonalEventHandler serves the caller's own calendar entries
type PersonalEventHandler struct {
	BaseHandler
	eventService services.PersonalEventService
}

func NewPersonalEventHandler(eventService services.PersonalEventService, logger utils.Logger) *PersonalEventHandler {
	return &PersonalEventHandler{
		BaseHandler:  NewBaseHandler(logger),
		eventService: eventService,
	}
}

// @Router /personal-events [post]
func (h *PersonalEventHandler) CreateEvent(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req services.PersonalEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), caller.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// @Router /personal-events [get]
func (h *PersonalEventHandler) ListEvents(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}

	events, err := h.eventService.List(c.Request.Context(), caller.ID, from, to)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// @Router /personal-events/{id} [get]
func (h *PersonalEventHandler) GetEvent(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	event, err := h.eventService.Get(c.Request.Context(), id, caller.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// @Router /personal-events/{id} [put]
func (h *PersonalEventHandler) UpdateEvent(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req services.PersonalEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, caller.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// @Router /personal-events/{id} [delete]
func (h *PersonalEventHandler) DeleteEvent(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), id, caller.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
