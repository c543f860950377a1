package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	"github.com/civicwatch/civicwatch/internal/infrastructure/persistence/mappers"
	"github.com/civicwatch/civicwatch/internal/infrastructure/persistence/models"
	db "github.com/civicwatch/civicwatch/internal/shared/db"
)

type IssueTypeRepository struct {
	db *gorm.DB
}

func NewIssueTypeRepository(db *gorm.DB) *IssueTypeRepository {
	return &IssueTypeRepository{db: db}
}

func (r *IssueTypeRepository) GetByName(ctx context.Context, name string) (*issuetype.IssueType, error) {
	var model models.IssueTypeModel
	if err := db.GetTxFromContext(ctx, r.db).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, issuetype.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get issue type: %w", err)
	}
	return mappers.IssueTypeToDomain(&model)
}

func (r *IssueTypeRepository) ListActive(ctx context.Context) ([]*issuetype.IssueType, error) {
	var rows []models.IssueTypeModel
	if err := db.GetTxFromContext(ctx, r.db).Where("active = ?", true).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list issue types: %w", err)
	}

	out := make([]*issuetype.IssueType, 0, len(rows))
	for i := range rows {
		it, err := mappers.IssueTypeToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *IssueTypeRepository) Upsert(ctx context.Context, it *issuetype.IssueType) error {
	model := mappers.IssueTypeToModel(it)
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"active", "priority_level", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert issue type: %w", err)
	}

	if it.ID == 0 {
		var stored models.IssueTypeModel
		if err := tx.Select("id").Where("name = ?", it.Name).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to reload issue type: %w", err)
		}
		it.ID = stored.ID
	}
	return nil
}
