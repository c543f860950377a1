package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/civicwatch/civicwatch/internal/infrastructure/migration"
	httpRouter "github.com/civicwatch/civicwatch/internal/interfaces/http"
	"github.com/civicwatch/civicwatch/internal/interfaces/cli/bootstrap"
)

var (
	env                string
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the CivicWatch HTTP server that takes citizen reports and serves the staff API.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply pending migrations on startup (always on for sqlite)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	rt, err := bootstrap.Init(env, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, log := rt.Config, rt.Logger
	log.Infow("starting server", "environment", env, "mode", cfg.Server.Mode, "auto_migrate", autoMigrate)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := handleMigrations(rt); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := httpRouter.NewContainer(ctx, rt.DB, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	container.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}
	if err := container.Shutdown(); err != nil {
		log.Warnw("failed to release resources", "error", err)
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(rt *bootstrap.Runtime) error {
	log := rt.Logger
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	m := migration.NewManager(rt.Config.Database.Driver, log)
	if autoMigrate || rt.Config.Database.Driver == "sqlite" {
		if autoMigrate && rt.Config.Server.Mode == "release" {
			log.Warnw("auto-migration is enabled in release mode")
		}
		return m.Migrate(rt.DB)
	}

	version, err := m.Version(rt.DB)
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}
