package mappers

import (
	"fmt"

	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	"github.com/civicwatch/civicwatch/internal/domain/place"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/infrastructure/persistence/models"
)

func IssueTypeToDomain(model *models.IssueTypeModel) (*issuetype.IssueType, error) {
	priority, err := vo.NewPriority(model.PriorityLevel)
	if err != nil {
		return nil, fmt.Errorf("issue type %q: %w", model.Name, err)
	}
	return &issuetype.IssueType{
		ID:       model.ID,
		Name:     model.Name,
		Active:   model.Active,
		Priority: priority,
	}, nil
}

func IssueTypeToModel(it *issuetype.IssueType) *models.IssueTypeModel {
	return &models.IssueTypeModel{
		ID:            it.ID,
		Name:          it.Name,
		Active:        it.Active,
		PriorityLevel: it.Priority.String(),
	}
}

func BarangayToDomain(model *models.BarangayModel) *place.Barangay {
	b := &place.Barangay{
		ID:          model.ID,
		Name:        model.Name,
		IsAvailable: model.IsAvailable,
		Description: model.Description,
		Sitios:      make([]place.Sitio, 0, len(model.Sitios)),
	}
	for i := range model.Sitios {
		b.Sitios = append(b.Sitios, *SitioToDomain(&model.Sitios[i]))
	}
	return b
}

func SitioToDomain(model *models.SitioModel) *place.Sitio {
	return &place.Sitio{
		ID:          model.ID,
		BarangayID:  model.BarangayID,
		Name:        model.Name,
		IsAvailable: model.IsAvailable,
	}
}
