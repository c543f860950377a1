package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/civicwatch/civicwatch/internal/infrastructure/persistence/models"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

// AutoMigrateModels lists every table the application owns.
func AutoMigrateModels() []any {
	return models.All()
}

// GormAutoMigrateStrategy builds the schema from the model structs. It is
// used for sqlite databases, where the MySQL scripts do not apply.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) Strategy {
	return &GormAutoMigrateStrategy{logger: log.Named("migration.automigrate")}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	s.logger.Infow("starting gorm auto migration", "models_count", len(AutoMigrateModels()))
	if err := db.AutoMigrate(AutoMigrateModels()...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) Down(*gorm.DB, int) error {
	return fmt.Errorf("%s does not support down migrations", s.GetName())
}

func (s *GormAutoMigrateStrategy) Version(*gorm.DB) (int64, error) {
	return 0, nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
