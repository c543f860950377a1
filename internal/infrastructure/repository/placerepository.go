package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/civicwatch/civicwatch/internal/domain/place"
	"github.com/civicwatch/civicwatch/internal/infrastructure/persistence/mappers"
	"github.com/civicwatch/civicwatch/internal/infrastructure/persistence/models"
	db "github.com/civicwatch/civicwatch/internal/shared/db"
)

type PlaceRepository struct {
	db *gorm.DB
}

func NewPlaceRepository(db *gorm.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

func (r *PlaceRepository) GetBarangay(ctx context.Context, id uint) (*place.Barangay, error) {
	var model models.BarangayModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Sitios", func(q *gorm.DB) *gorm.DB { return q.Order("name ASC") }).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, place.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get barangay: %w", err)
	}
	return mappers.BarangayToDomain(&model), nil
}

func (r *PlaceRepository) GetSitio(ctx context.Context, id uint) (*place.Sitio, error) {
	var model models.SitioModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, place.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sitio: %w", err)
	}
	return mappers.SitioToDomain(&model), nil
}

func (r *PlaceRepository) ListBarangays(ctx context.Context) ([]*place.Barangay, error) {
	var rows []models.BarangayModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Sitios", func(q *gorm.DB) *gorm.DB { return q.Order("name ASC") }).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list barangays: %w", err)
	}

	out := make([]*place.Barangay, 0, len(rows))
	for i := range rows {
		out = append(out, mappers.BarangayToDomain(&rows[i]))
	}
	return out, nil
}

// UpsertBarangay writes b and its sitios keyed by name. Sitios missing from b
// are left untouched.
func (r *PlaceRepository) UpsertBarangay(ctx context.Context, b *place.Barangay) error {
	tx := db.GetTxFromContext(ctx, r.db)

	model := &models.BarangayModel{
		Name:        b.Name,
		IsAvailable: b.IsAvailable,
		Description: b.Description,
	}
	err := tx.Omit("Sitios").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_available", "description", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert barangay: %w", err)
	}

	var stored models.BarangayModel
	if err := tx.Select("id").Where("name = ?", b.Name).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to reload barangay: %w", err)
	}
	b.ID = stored.ID

	for i := range b.Sitios {
		s := &b.Sitios[i]
		s.BarangayID = b.ID
		sm := &models.SitioModel{BarangayID: b.ID, Name: s.Name, IsAvailable: s.IsAvailable}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "barangay_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_available", "updated_at"}),
		}).Create(sm).Error
		if err != nil {
			return fmt.Errorf("failed to upsert sitio %q: %w", s.Name, err)
		}

		var storedSitio models.SitioModel
		if err := tx.Select("id").Where("barangay_id = ? AND name = ?", b.ID, s.Name).First(&storedSitio).Error; err != nil {
			return fmt.Errorf("failed to reload sitio %q: %w", s.Name, err)
		}
		s.ID = storedSitio.ID
	}
	return nil
}
