package migration

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

//go:embed scripts/*.sql
var scripts embed.FS

// Strategy defines the interface for different migration strategies
type Strategy interface {
	Migrate(db *gorm.DB) error
	// Down rolls back the given number of versions.
	Down(db *gorm.DB, steps int) error
	Version(db *gorm.DB) (int64, error)
	GetName() string
}

// GooseStrategy applies the versioned SQL scripts embedded in the binary.
type GooseStrategy struct {
	logger logger.Interface
}

func NewGooseStrategy(log logger.Interface) Strategy {
	return &GooseStrategy{logger: log.Named("migration.goose")}
}

func (s *GooseStrategy) provider(db *gorm.DB) (*goose.Provider, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	fsys, err := fs.Sub(scripts, "scripts")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration scripts: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectMySQL, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}
	return p, nil
}

func (s *GooseStrategy) Migrate(db *gorm.DB) error {
	p, err := s.provider(db)
	if err != nil {
		return err
	}
	ctx := context.Background()

	currentVersion, err := p.GetDBVersion(ctx)
	if err != nil {
		s.logger.Errorw("failed to get current version", "error", err)
		return fmt.Errorf("failed to get current version: %w", err)
	}
	s.logger.Infow("current migration status", "version", currentVersion)

	results, err := p.Up(ctx)
	if err != nil {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Infow("applied migration", "source", r.Source.Path, "duration", r.Duration)
	}

	finalVersion, err := p.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}
	s.logger.Infow("migration completed successfully",
		"from_version", currentVersion,
		"to_version", finalVersion)
	return nil
}

func (s *GooseStrategy) Down(db *gorm.DB, steps int) error {
	p, err := s.provider(db)
	if err != nil {
		return err
	}
	s.logger.Infow("starting down migration", "steps", steps)

	for i := 0; i < steps; i++ {
		r, err := p.Down(context.Background())
		if err != nil {
			s.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
		s.logger.Infow("rolled back migration", "source", r.Source.Path)
	}
	return nil
}

func (s *GooseStrategy) Version(db *gorm.DB) (int64, error) {
	p, err := s.provider(db)
	if err != nil {
		return 0, err
	}
	v, err := p.GetDBVersion(context.Background())
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

// Status reports every known script with its applied state.
func (s *GooseStrategy) Status(db *gorm.DB) ([]*goose.MigrationStatus, error) {
	p, err := s.provider(db)
	if err != nil {
		return nil, err
	}
	statuses, err := p.Status(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get migration status: %w", err)
	}
	return statuses, nil
}

// Create writes a new timestamped SQL script into dir.
func Create(dir, name string) error {
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration %q: %w", name, err)
	}
	return nil
}
