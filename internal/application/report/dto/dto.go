package dto

import (
	"time"

	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

type TriageDTO struct {
	Strategy string   `json:"strategy"`
	Score    int      `json:"score"`
	Signals  []string `json:"signals"`
}

// ReportDTO is the full staff view of a report.
type ReportDTO struct {
	ID                     uint                `json:"id"`
	TrackingCode           string              `json:"tracking_code"`
	Title                  string              `json:"title"`
	IssueType              string              `json:"issue_type"`
	CustomIssueDescription string              `json:"custom_issue_description,omitempty"`
	Description            string              `json:"description"`
	Image                  string              `json:"image,omitempty"`
	BarangayID             uint                `json:"barangay_id"`
	SitioID                uint                `json:"sitio_id"`
	Location               string              `json:"location"`
	Latitude               *float64            `json:"latitude,omitempty"`
	Longitude              *float64            `json:"longitude,omitempty"`
	LocationAccuracy       *float64            `json:"location_accuracy,omitempty"`
	SenderName             string              `json:"sender_name"`
	ContactNumber          string              `json:"contact_number"`
	Remarks                string              `json:"remarks,omitempty"`
	Priority               string              `json:"priority_level"`
	Status                 string              `json:"status"`
	StatusLabel            string              `json:"status_label"`
	RejectionReason        string              `json:"rejection_reason,omitempty"`
	Resolution             string              `json:"resolution,omitempty"`
	IsEmergency            bool                `json:"is_emergency"`
	Triage                 TriageDTO           `json:"triage"`
	DuplicateOfID          *uint               `json:"duplicate_of_report_id"`
	Duplicates             []ReportListItemDTO `json:"duplicates,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
	ApprovedAt             *time.Time          `json:"approved_at,omitempty"`
	ResolvedAt             *time.Time          `json:"resolved_at,omitempty"`
	RejectedAt             *time.Time          `json:"rejected_at,omitempty"`
	DuplicateAt            *time.Time          `json:"duplicate_at,omitempty"`
	DeletedAt              *time.Time          `json:"deleted_at,omitempty"`
}

type ReportListItemDTO struct {
	ID            uint   `json:"id"`
	TrackingCode  string `json:"tracking_code"`
	Title         string `json:"title"`
	IssueType     string `json:"issue_type"`
	Location      string `json:"location"`
	Priority      string `json:"priority_level"`
	Status        string `json:"status"`
	StatusLabel   string `json:"status_label"`
	IsEmergency   bool   `json:"is_emergency"`
	DuplicateOfID *uint  `json:"duplicate_of_report_id"`
	CreatedAt     string `json:"created_at"`
}

// TrackedReportDTO is what a citizen sees when looking up a tracking code.
// Submitter details are masked.
type TrackedReportDTO struct {
	TrackingCode            string    `json:"tracking_code"`
	Title                   string    `json:"title"`
	IssueType               string    `json:"issue_type"`
	Location                string    `json:"location"`
	Priority                string    `json:"priority_level"`
	Status                  string    `json:"status"`
	StatusLabel             string    `json:"status_label"`
	SenderName              string    `json:"sender_name"`
	ContactNumber           string    `json:"contact_number"`
	RejectionReason         string    `json:"rejection_reason,omitempty"`
	Resolution              string    `json:"resolution,omitempty"`
	DuplicateOfTrackingCode string    `json:"duplicate_of,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

type DuplicateMatchDTO struct {
	Report  ReportListItemDTO `json:"report"`
	Score   float64           `json:"similarity_score"`
	Reasons []string          `json:"reasons"`
}

type DuplicateCheckDTO struct {
	IsDuplicate bool                `json:"is_duplicate"`
	Matches     []DuplicateMatchDTO `json:"matches"`
	BestMatch   *DuplicateMatchDTO  `json:"best_match"`
}

// PublicDuplicateMatchDTO is a match as shown to an anonymous submitter: how
// close it is and why, never which report it is.
type PublicDuplicateMatchDTO struct {
	Score   float64  `json:"similarity_score"`
	Reasons []string `json:"reasons"`
}

type PublicDuplicateCheckDTO struct {
	IsDuplicate bool                      `json:"is_duplicate"`
	Matches     []PublicDuplicateMatchDTO `json:"matches"`
	BestMatch   *PublicDuplicateMatchDTO  `json:"best_match"`
}

func ToPublicDuplicateCheckDTO(d *DuplicateCheckDTO) *PublicDuplicateCheckDTO {
	out := &PublicDuplicateCheckDTO{Matches: []PublicDuplicateMatchDTO{}}
	if d == nil {
		return out
	}
	out.IsDuplicate = d.IsDuplicate
	for _, m := range d.Matches {
		out.Matches = append(out.Matches, PublicDuplicateMatchDTO{Score: m.Score, Reasons: m.Reasons})
	}
	if len(out.Matches) > 0 {
		out.BestMatch = &out.Matches[0]
	}
	return out
}

type MonthlyCountDTO struct {
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type ReportStatsDTO struct {
	Total    int64             `json:"total"`
	ByStatus map[string]int64  `json:"by_status"`
	Year     int               `json:"year"`
	Monthly  []MonthlyCountDTO `json:"monthly"`
}

func ToReportDTO(r *report.Report) *ReportDTO {
	if r == nil {
		return nil
	}

	loc := r.Location()
	triage := r.Triage()
	d := &ReportDTO{
		ID:                     r.ID(),
		TrackingCode:           r.TrackingCode(),
		Title:                  r.Title(),
		IssueType:              r.IssueType(),
		CustomIssueDescription: r.CustomIssueDescription(),
		Description:            r.Description(),
		Image:                  r.Image(),
		BarangayID:             loc.BarangayID,
		SitioID:                loc.SitioID,
		Location:               loc.Label(),
		SenderName:             r.SenderName(),
		ContactNumber:          r.ContactNumber(),
		Remarks:                r.Remarks(),
		Priority:               r.Priority().String(),
		Status:                 r.Status().String(),
		StatusLabel:            r.Status().Label(),
		RejectionReason:        r.RejectionReason(),
		Resolution:             r.Resolution(),
		IsEmergency:            r.IsEmergency(),
		Triage: TriageDTO{
			Strategy: triage.Strategy,
			Score:    triage.Score,
			Signals:  triage.Signals,
		},
		DuplicateOfID: r.DuplicateOfID(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
		ApprovedAt:    r.ApprovedAt(),
		ResolvedAt:    r.ResolvedAt(),
		RejectedAt:    r.RejectedAt(),
		DuplicateAt:   r.DuplicateAt(),
		DeletedAt:     r.DeletedAt(),
	}
	if d.Triage.Signals == nil {
		d.Triage.Signals = []string{}
	}
	if geo := r.Geo(); geo != nil {
		lat, lng := geo.Latitude, geo.Longitude
		d.Latitude = &lat
		d.Longitude = &lng
		d.LocationAccuracy = geo.Accuracy
	}
	return d
}

func ToReportListItemDTO(r *report.Report) ReportListItemDTO {
	return ReportListItemDTO{
		ID:            r.ID(),
		TrackingCode:  r.TrackingCode(),
		Title:         r.Title(),
		IssueType:     r.IssueType(),
		Location:      r.Location().Label(),
		Priority:      r.Priority().String(),
		Status:        r.Status().String(),
		StatusLabel:   r.Status().Label(),
		IsEmergency:   r.IsEmergency(),
		DuplicateOfID: r.DuplicateOfID(),
		CreatedAt:     r.CreatedAt().Format(time.RFC3339),
	}
}

func ToReportListItemDTOs(reports []*report.Report) []ReportListItemDTO {
	items := make([]ReportListItemDTO, 0, len(reports))
	for _, r := range reports {
		items = append(items, ToReportListItemDTO(r))
	}
	return items
}

// ToTrackedReportDTO builds the public view. primaryCode is the tracking code
// of the report r was merged into, if any.
func ToTrackedReportDTO(r *report.Report, primaryCode string) *TrackedReportDTO {
	return &TrackedReportDTO{
		TrackingCode:            r.TrackingCode(),
		Title:                   r.Title(),
		IssueType:               r.IssueType(),
		Location:                r.Location().Label(),
		Priority:                r.Priority().String(),
		Status:                  r.Status().String(),
		StatusLabel:             r.Status().Label(),
		SenderName:              utils.MaskName(r.SenderName()),
		ContactNumber:           utils.MaskPhone(r.ContactNumber()),
		RejectionReason:         r.RejectionReason(),
		Resolution:              r.Resolution(),
		DuplicateOfTrackingCode: primaryCode,
		CreatedAt:               r.CreatedAt(),
		UpdatedAt:               r.UpdatedAt(),
	}
}
