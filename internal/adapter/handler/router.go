package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/g37/meeting-manager/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                  *config.Config
	meetingHandler       *Meeting
	pendingActionHandler *PendingAction
	authMiddleware       echo.MiddlewareFunc
	metricsRegistry      *prometheus.Registry
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	meetingHandler *Meeting,
	pendingActionHandler *PendingAction,
	authMiddleware echo.MiddlewareFunc,
	metricsRegistry *prometheus.Registry,
) *Router {
	return &Router{
		cfg:                  cfg,
		meetingHandler:       meetingHandler,
		pendingActionHandler: pendingActionHandler,
		authMiddleware:       authMiddleware,
		metricsRegistry:      metricsRegistry,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	if rt.metricsRegistry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(rt.metricsRegistry, promhttp.HandlerOpts{})))
	}

	v1 := e.Group("/v1")
	if rt.authMiddleware != nil {
		v1.Use(rt.authMiddleware)
	}

	rt.setupMeetingRoutes(v1)
	rt.setupPendingActionRoutes(v1)
}

func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")
	meetings.GET("", rt.meetingHandler.List)
	meetings.POST("", rt.meetingHandler.Create)
	meetings.GET("/sources/status", rt.meetingHandler.SourceStatus)
	meetings.GET("/:id", rt.meetingHandler.Get)
	meetings.PUT("/:id", rt.meetingHandler.Update)
	meetings.DELETE("/:id", rt.meetingHandler.Delete)
}

func (rt *Router) setupPendingActionRoutes(g *echo.Group) {
	actions := g.Group("/pending-actions")
	actions.GET("", rt.pendingActionHandler.List)
	actions.POST("", rt.pendingActionHandler.Create)

	actions.POST("/bulk-approve", rt.pendingActionHandler.BulkApprove)
	actions.POST("/bulk-reject", rt.pendingActionHandler.BulkReject)
	actions.POST("/from-meeting/:meetingId", rt.pendingActionHandler.FromMeeting)
	actions.GET("/meeting/:meetingId", rt.pendingActionHandler.ByMeeting)
	actions.POST("/sync-from-n8n", rt.pendingActionHandler.Sync)
	actions.GET("/statistics/:userId", rt.pendingActionHandler.Statistics)

	actions.GET("/:id", rt.pendingActionHandler.Get)
	actions.PUT("/:id", rt.pendingActionHandler.Update)
	actions.DELETE("/:id", rt.pendingActionHandler.Delete)
	actions.POST("/:id/approve", rt.pendingActionHandler.Approve)
	actions.POST("/:id/reject", rt.pendingActionHandler.Reject)
	actions.POST("/:id/activate", rt.pendingActionHandler.Activate)
	actions.POST("/:id/complete", rt.pendingActionHandler.Complete)
	actions.POST("/:id/cancel", rt.pendingActionHandler.Cancel)
	actions.PUT("/:id/draft", rt.pendingActionHandler.StashDraft)
	actions.GET("/:id/draft", rt.pendingActionHandler.GetDraft)
	actions.DELETE("/:id/draft", rt.pendingActionHandler.DiscardDraft)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
