package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/civicwatch/civicwatch/internal/domain/report"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/infrastructure/persistence/models"
)

// ReportMapper converts between the Report aggregate and its row.
type ReportMapper interface {
	ToModel(r *report.Report) (*models.ReportModel, error)
	ToDomain(model *models.ReportModel) (*report.Report, error)
	ToDomainList(models []models.ReportModel) ([]*report.Report, error)
	MergeToModel(m report.MergeRecord) *models.ReportMergeModel
}

type ReportMapperImpl struct{}

func NewReportMapper() ReportMapper {
	return &ReportMapperImpl{}
}

func (m *ReportMapperImpl) ToModel(r *report.Report) (*models.ReportModel, error) {
	s := r.Snapshot()
	triage, err := json.Marshal(s.Triage)
	if err != nil {
		return nil, fmt.Errorf("failed to encode triage result: %w", err)
	}

	model := &models.ReportModel{
		ID:                     s.ID,
		TrackingCode:           s.TrackingCode,
		Title:                  s.Title,
		IssueType:              s.IssueType,
		CustomIssueDescription: s.CustomIssueDescription,
		Description:            s.Description,
		Image:                  s.Image,
		BarangayID:             s.Location.BarangayID,
		SitioID:                s.Location.SitioID,
		BarangayName:           s.Location.BarangayName,
		SitioName:              s.Location.SitioName,
		SenderName:             s.SenderName,
		ContactNumber:          s.ContactNumber,
		Remarks:                s.Remarks,
		PriorityLevel:          s.Priority.String(),
		Status:                 s.Status.String(),
		RejectionReason:        s.RejectionReason,
		Resolution:             s.Resolution,
		IsEmergency:            s.Triage.Emergency,
		Triage:                 datatypes.JSON(triage),
		DuplicateOfReportID:    s.DuplicateOfID,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
		ApprovedAt:             s.ApprovedAt,
		ResolvedAt:             s.ResolvedAt,
		RejectedAt:             s.RejectedAt,
		DuplicateAt:            s.DuplicateAt,
	}
	if s.Geo != nil {
		lat, lng := s.Geo.Latitude, s.Geo.Longitude
		model.Latitude = &lat
		model.Longitude = &lng
		model.LocationAccuracy = s.Geo.Accuracy
	}
	if s.DeletedAt != nil {
		model.DeletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	}
	return model, nil
}

func (m *ReportMapperImpl) ToDomain(model *models.ReportModel) (*report.Report, error) {
	if model == nil {
		return nil, nil
	}

	status, err := vo.NewStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("report %d: %w", model.ID, err)
	}
	priority, err := vo.NewPriority(model.PriorityLevel)
	if err != nil {
		return nil, fmt.Errorf("report %d: %w", model.ID, err)
	}

	var triage report.TriageResult
	if len(model.Triage) > 0 {
		if err := json.Unmarshal(model.Triage, &triage); err != nil {
			return nil, fmt.Errorf("report %d: failed to decode triage result: %w", model.ID, err)
		}
	}
	triage.Emergency = model.IsEmergency

	s := report.Snapshot{
		ID:                     model.ID,
		TrackingCode:           model.TrackingCode,
		Title:                  model.Title,
		IssueType:              model.IssueType,
		CustomIssueDescription: model.CustomIssueDescription,
		Description:            model.Description,
		Image:                  model.Image,
		Location: report.Location{
			BarangayID:   model.BarangayID,
			SitioID:      model.SitioID,
			BarangayName: model.BarangayName,
			SitioName:    model.SitioName,
		},
		SenderName:      model.SenderName,
		ContactNumber:   model.ContactNumber,
		Remarks:         model.Remarks,
		Priority:        priority,
		Status:          status,
		RejectionReason: model.RejectionReason,
		Resolution:      model.Resolution,
		Triage:          triage,
		DuplicateOfID:   model.DuplicateOfReportID,
		CreatedAt:       utc(model.CreatedAt),
		UpdatedAt:       utc(model.UpdatedAt),
		ApprovedAt:      utcPtr(model.ApprovedAt),
		ResolvedAt:      utcPtr(model.ResolvedAt),
		RejectedAt:      utcPtr(model.RejectedAt),
		DuplicateAt:     utcPtr(model.DuplicateAt),
	}
	if model.Latitude != nil && model.Longitude != nil {
		s.Geo = &report.GeoPoint{
			Latitude:  *model.Latitude,
			Longitude: *model.Longitude,
			Accuracy:  model.LocationAccuracy,
		}
	}
	if model.DeletedAt.Valid {
		t := utc(model.DeletedAt.Time)
		s.DeletedAt = &t
	}

	r, err := report.ReconstructReport(s)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct report %d: %w", model.ID, err)
	}
	return r, nil
}

func (m *ReportMapperImpl) ToDomainList(rows []models.ReportModel) ([]*report.Report, error) {
	out := make([]*report.Report, 0, len(rows))
	for i := range rows {
		r, err := m.ToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *ReportMapperImpl) MergeToModel(rec report.MergeRecord) *models.ReportMergeModel {
	return &models.ReportMergeModel{
		PrimaryReportID:   rec.PrimaryID,
		DuplicateReportID: rec.DuplicateID,
		MergedBy:          rec.MergedBy,
		SimilarityScore:   rec.Score,
		CreatedAt:         rec.CreatedAt,
	}
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
