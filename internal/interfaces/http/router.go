package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicwatch/civicwatch/internal/infrastructure/auth"
	"github.com/civicwatch/civicwatch/internal/interfaces/http/middleware"
	"github.com/civicwatch/civicwatch/internal/interfaces/http/routes"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

// SetupRoutes registers the middleware chain and every route.
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.CustomLogger(c.log))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.SecurityHeaders())

	c.engine.GET("/health", func(ctx *gin.Context) {
		utils.SuccessResponse(ctx, http.StatusOK, "", gin.H{"status": "ok"})
	})

	if c.svcs.localStore != nil && strings.HasPrefix(c.cfg.Storage.PublicBaseURL, "/") {
		c.engine.Static(c.cfg.Storage.PublicBaseURL, c.cfg.Storage.LocalDir)
	}

	routes.SetupReportRoutes(c.engine, &routes.ReportRouteConfig{
		PublicHandler:  c.hdlrs.publicReportHandler,
		AdminHandler:   c.hdlrs.adminReportHandler,
		AuthMiddleware: c.authMiddleware,
		RateLimiter:    c.svcs.limiter,
		SubmitPerHour:  c.cfg.RateLimit.SubmitPerHour,
		Logger:         c.log.Named("ratelimit"),
	})
	routes.SetupPlaceRoutes(c.engine, &routes.PlaceRouteConfig{
		PlaceHandler: c.hdlrs.placeHandler,
	})

	c.engine.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, utils.APIResponse{
			Success: false,
			Error: &utils.ErrorInfo{
				Type:    "not_found",
				Message: "The requested resource was not found.",
			},
		})
	})
}

// Engine exposes the gin engine for the HTTP server and tests.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// JWTService returns the token service used by the staff middleware.
func (c *Container) JWTService() *auth.JWTService {
	return c.jwtSvc
}
