package dto

import (
	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	"github.com/civicwatch/civicwatch/internal/domain/place"
)

type SitioDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	IsAvailable bool   `json:"is_available"`
}

type BarangayDTO struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsAvailable bool       `json:"is_available"`
	Sitios      []SitioDTO `json:"sitios"`
}

type IssueTypeDTO struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Priority string `json:"priority_level"`
}

// PlacesDTO is everything the public form needs to populate its pickers.
type PlacesDTO struct {
	Barangays  []BarangayDTO  `json:"barangays"`
	IssueTypes []IssueTypeDTO `json:"issue_types"`
}

func ToBarangayDTO(b *place.Barangay) BarangayDTO {
	d := BarangayDTO{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		IsAvailable: b.IsAvailable,
		Sitios:      make([]SitioDTO, 0, len(b.Sitios)),
	}
	for _, s := range b.Sitios {
		d.Sitios = append(d.Sitios, SitioDTO{ID: s.ID, Name: s.Name, IsAvailable: s.IsAvailable})
	}
	return d
}

func ToIssueTypeDTO(it *issuetype.IssueType) IssueTypeDTO {
	return IssueTypeDTO{ID: it.ID, Name: it.Name, Priority: it.Priority.String()}
}
