package handlers

import (
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	assignmentHandler    *AssignmentHandler
	maintenanceHandler   *MaintenanceHandler
	scoreHandler         *ScoreHandler
	agendaHandler        *AgendaHandler
	personalEventHandler *PersonalEventHandler
	filterHandler        *FilterHandler

	auth gin.HandlerFunc
}

// NewHandlerManager wires every handler. A nil parser trusts gateway headers.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	parser TokenParser,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		assignmentHandler:    NewAssignmentHandler(serviceManager.Assignment(), logger),
		maintenanceHandler:   NewMaintenanceHandler(serviceManager.Reconciliation(), serviceManager.Orphan(), serviceManager.Filter(), logger),
		scoreHandler:         NewScoreHandler(serviceManager.Score(), logger),
		agendaHandler:        NewAgendaHandler(serviceManager.Agenda(), logger, time.Now),
		personalEventHandler: NewPersonalEventHandler(serviceManager.PersonalEvent(), logger),
		filterHandler:        NewFilterHandler(serviceManager.Filter(), logger),
		auth:                 AuthMiddleware(parser, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.auth)
	{
		assignments := v1.Group("/assignments")
		{
			assignments.POST("", hm.assignmentHandler.CreateAssignment)
			assignments.GET("", hm.assignmentHandler.ListAssignments)
			assignments.GET("/:id", hm.assignmentHandler.GetAssignment)
			assignments.DELETE("/:id", hm.assignmentHandler.DeleteAssignment)

			// Progress
			assignments.GET("/:id/progress", hm.assignmentHandler.ListProgress)
			assignments.PUT("/:id/progress/:student_id", hm.assignmentHandler.UpdateProgress)
		}

		maintenance := v1.Group("/maintenance", RequireTeacher())
		{
			maintenance.POST("/reconcile", hm.maintenanceHandler.Reconcile)
			maintenance.POST("/synthesize", hm.maintenanceHandler.Synthesize)
			maintenance.POST("/filters/invalidate", hm.maintenanceHandler.InvalidateFilters)
		}

		scores := v1.Group("/scores")
		{
			scores.POST("", RequireTeacher(), hm.scoreHandler.RecordScore)
			scores.GET("", hm.scoreHandler.ListScores)
			scores.POST("/compute", hm.scoreHandler.ComputeScore)
			scores.GET("/:id", hm.scoreHandler.GetScore)
		}
		v1.GET("/courses/:course_id/scores/export", RequireTeacher(), hm.scoreHandler.ExportCourseScores)

		v1.GET("/agenda", hm.agendaHandler.GetAgenda)

		events := v1.Group("/personal-events")
		{
			events.POST("", hm.personalEventHandler.CreateEvent)
			events.GET("", hm.personalEventHandler.ListEvents)
			events.GET("/:id", hm.personalEventHandler.GetEvent)
			events.PUT("/:id", hm.personalEventHandler.UpdateEvent)
			events.DELETE("/:id", hm.personalEventHandler.DeleteEvent)
		}

		filters := v1.Group("/filters")
		{
			filters.GET("", hm.filterHandler.ListHierarchies)
			filters.POST("/:hierarchy/resolve", hm.filterHandler.ResolveFilters)
		}
	}
}
