package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/civicwatch/civicwatch/internal/shared/constants"
)

// ReportModel is the reports table. Duplicate candidates are looked up by
// issue type, place and creation time, hence the composite index.
type ReportModel struct {
	ID                     uint     `gorm:"primaryKey"`
	TrackingCode           string   `gorm:"uniqueIndex;size:32;not null"`
	Title                  string   `gorm:"size:255;not null"`
	IssueType              string   `gorm:"size:255;not null;index:idx_reports_candidates,priority:1"`
	CustomIssueDescription string   `gorm:"size:255"`
	Description            string   `gorm:"type:text;not null"`
	Image                  string   `gorm:"size:512"`
	BarangayID             uint     `gorm:"not null;index:idx_reports_candidates,priority:2"`
	SitioID                uint     `gorm:"not null;index:idx_reports_candidates,priority:3"`
	BarangayName           string   `gorm:"size:255;not null"`
	SitioName              string   `gorm:"size:255;not null"`
	Latitude               *float64 `gorm:"type:decimal(10,7)"`
	Longitude              *float64 `gorm:"type:decimal(10,7)"`
	LocationAccuracy       *float64
	SenderName             string `gorm:"size:255;not null"`
	ContactNumber          string `gorm:"size:20;not null"`
	Remarks                string `gorm:"type:text"`
	PriorityLevel          string `gorm:"size:10;not null;default:'Medium';index"`
	Status                 string `gorm:"size:20;not null;default:'pending';index"`
	RejectionReason        string `gorm:"size:500"`
	Resolution             string `gorm:"type:text"`
	IsEmergency            bool   `gorm:"not null;default:false;index"`
	Triage                 datatypes.JSON
	DuplicateOfReportID    *uint     `gorm:"index"`
	CreatedAt              time.Time `gorm:"not null;index:idx_reports_candidates,priority:4"`
	UpdatedAt              time.Time
	ApprovedAt             *time.Time
	ResolvedAt             *time.Time
	RejectedAt             *time.Time
	DuplicateAt            *time.Time
	DeletedAt              gorm.DeletedAt `gorm:"index"`
}

func (ReportModel) TableName() string {
	return constants.TableReports
}

// ReportMergeModel is the audit trail of duplicate merges.
type ReportMergeModel struct {
	ID                uint     `gorm:"primaryKey"`
	PrimaryReportID   uint     `gorm:"not null;index"`
	DuplicateReportID uint     `gorm:"not null;index"`
	MergedBy          string   `gorm:"size:255"`
	SimilarityScore   *float64 `gorm:"type:decimal(4,3)"`
	CreatedAt         time.Time
}

func (ReportMergeModel) TableName() string {
	return constants.TableReportMerges
}
