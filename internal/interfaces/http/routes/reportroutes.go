package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/civicwatch/civicwatch/internal/application/report/usecases"
	"github.com/civicwatch/civicwatch/internal/infrastructure/ratelimit"
	reporthandlers "github.com/civicwatch/civicwatch/internal/interfaces/http/handlers/report"
	"github.com/civicwatch/civicwatch/internal/interfaces/http/middleware"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

type ReportRouteConfig struct {
	PublicHandler  *reporthandlers.PublicHandler
	AdminHandler   *reporthandlers.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
	// RateLimiter is optional. Without it submissions are not throttled.
	RateLimiter   ratelimit.RateLimiter
	SubmitPerHour int
	Logger        logger.Interface
}

func SetupReportRoutes(engine *gin.Engine, config *ReportRouteConfig) {
	public := engine.Group("/api/reports")
	{
		submit := []gin.HandlerFunc{}
		if config.RateLimiter != nil && config.SubmitPerHour > 0 {
			submit = append(submit, middleware.RateLimit(
				config.RateLimiter,
				"report_submit",
				ratelimit.RateLimitConfig{RequestsPerHour: config.SubmitPerHour},
				config.Logger,
			))
		}
		submit = append(submit, config.PublicHandler.SubmitReport)

		public.POST("", submit...)
		public.GET("/track/:code", config.PublicHandler.TrackReport)
		public.POST("/duplicates/check", config.PublicHandler.CheckDuplicates)
	}

	admin := engine.Group("/api/admin/reports")
	admin.Use(config.AuthMiddleware.RequireStaff())
	{
		h := config.AdminHandler

		// Static paths first so they are not read as an :id.
		admin.GET("", h.ListReports)
		admin.GET("/stats", h.GetStats)
		admin.POST("/duplicates/merge", h.MergeDuplicates)

		bulk := admin.Group("/bulk")
		{
			bulk.POST("/approve", h.BulkChangeStatus(usecases.ActionApprove))
			bulk.POST("/resolve", h.BulkChangeStatus(usecases.ActionResolve))
			bulk.POST("/reject", h.BulkChangeStatus(usecases.ActionReject))
			bulk.POST("/revert", h.BulkChangeStatus(usecases.ActionRevert))
			bulk.POST("/trash", h.BulkTrash(usecases.ActionTrash))
			bulk.POST("/restore", h.BulkTrash(usecases.ActionRestore))
			bulk.POST("/force-delete", h.BulkTrash(usecases.ActionForceDelete))
		}

		admin.GET("/:id", h.GetReport)
		admin.GET("/:id/duplicates", h.FindDuplicates)
		admin.POST("/:id/approve", h.ApproveReport)
		admin.POST("/:id/resolve", h.ResolveReport)
		admin.POST("/:id/reject", h.RejectReport)
		admin.POST("/:id/restore", h.RestoreReport)
		admin.DELETE("/:id", h.TrashReport)
		admin.DELETE("/:id/force", h.ForceDeleteReport)
	}
}
