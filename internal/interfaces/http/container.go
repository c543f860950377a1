package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/civicwatch/civicwatch/internal/application/report/notification"
	"github.com/civicwatch/civicwatch/internal/infrastructure/auth"
	"github.com/civicwatch/civicwatch/internal/infrastructure/config"
	"github.com/civicwatch/civicwatch/internal/interfaces/http/middleware"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

// Container holds the infrastructure, repositories, use cases and handlers
// of the portal and knows how to shut them down.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	svcs  *services
	ucs   *allUseCases
	hdlrs *allHandlers

	jwtSvc         *auth.JWTService
	authMiddleware *middleware.AuthMiddleware
	gateway        *notification.Gateway
}

// NewContainer wires every component. Optional integrations that are
// misconfigured fail here rather than on the first request.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	c.initRepositories()
	if err := c.initServices(ctx); err != nil {
		return nil, err
	}
	c.initUseCases()
	c.initHandlers()

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())
	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log.Named("auth"))

	return c, nil
}

// Shutdown waits for in-flight notifications and closes Redis.
func (c *Container) Shutdown() error {
	if c.gateway != nil {
		c.gateway.Wait()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis: %w", err)
		}
	}
	return nil
}
