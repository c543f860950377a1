package models

import (
	"time"

	"github.com/civicwatch/civicwatch/internal/shared/constants"
)

type IssueTypeModel struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"uniqueIndex;size:255;not null"`
	Active        bool   `gorm:"not null"`
	PriorityLevel string `gorm:"size:10;not null;default:'Medium'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (IssueTypeModel) TableName() string {
	return constants.TableIssueTypes
}

type BarangayModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:255;not null"`
	IsAvailable bool   `gorm:"not null;default:false"`
	Description string `gorm:"type:text"`
	Sitios      []SitioModel `gorm:"foreignKey:BarangayID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (BarangayModel) TableName() string {
	return constants.TableBarangays
}

type SitioModel struct {
	ID          uint   `gorm:"primaryKey"`
	BarangayID  uint   `gorm:"not null;uniqueIndex:idx_sitios_barangay_name,priority:1"`
	Name        string `gorm:"size:255;not null;uniqueIndex:idx_sitios_barangay_name,priority:2"`
	IsAvailable bool   `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SitioModel) TableName() string {
	return constants.TableSitios
}

// All lists every model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&BarangayModel{},
		&SitioModel{},
		&IssueTypeModel{},
		&ReportModel{},
		&ReportMergeModel{},
	}
}
