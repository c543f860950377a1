// Package bootstrap loads the shared runtime every command needs.
package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/civicwatch/civicwatch/internal/infrastructure/config"
	"github.com/civicwatch/civicwatch/internal/infrastructure/database"
	"github.com/civicwatch/civicwatch/internal/shared/biztime"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

// Runtime is what a command gets after Init succeeds.
type Runtime struct {
	Config *config.Config
	Logger logger.Interface
	DB     *gorm.DB
}

// Init loads configuration, sets up logging and the business timezone.
// The database is opened only when withDB is true.
func Init(env string, withDB bool) (*Runtime, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = MapEnvToGinMode(cfg.Server.Mode)

	if err := logger.Init(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath,
		Debug:      cfg.Server.Mode == "debug",
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	rt := &Runtime{Config: cfg, Logger: log}
	if !withDB {
		return rt, nil
	}

	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt.DB = db
	return rt, nil
}

// Close releases the database connection, if one was opened.
func (r *Runtime) Close() {
	if err := database.Close(r.DB); err != nil {
		r.Logger.Warnw("failed to close database", "error", err)
	}
}

// MapEnvToGinMode translates an environment name into a gin mode.
func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
