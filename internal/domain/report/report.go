package report

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
)

// Location is the place a report refers to. Names are a snapshot taken at
// submission and are never refreshed from the place tables.
type Location struct {
	BarangayID   uint
	SitioID      uint
	BarangayName string
	SitioName    string
}

// SameAs compares by id only.
func (l Location) SameAs(other Location) bool {
	return l.BarangayID == other.BarangayID && l.SitioID == other.SitioID
}

// Label is the human form shown to the submitter and mirrored: "Poblacion, Proper".
func (l Location) Label() string {
	switch {
	case l.SitioName != "" && l.BarangayName != "":
		return l.BarangayName + ", " + l.SitioName
	case l.BarangayName != "":
		return l.BarangayName
	default:
		return l.SitioName
	}
}

type GeoPoint struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
}

// TriageResult is the advisory emergency signal recorded at submission.
type TriageResult struct {
	Emergency bool     `json:"emergency"`
	Strategy  string   `json:"strategy"`
	Score     int      `json:"score"`
	Signals   []string `json:"signals,omitempty"`
}

// Draft carries validated submission input into NewReport.
type Draft struct {
	Title                  string
	IssueType              string
	CustomIssueDescription string
	Description            string
	Image                  string
	Location               Location
	Geo                    *GeoPoint
	SenderName             string
	ContactNumber          string
	Remarks                string
	Priority               vo.Priority
	Triage                 TriageResult
}

type Report struct {
	id                     uint
	trackingCode           string
	title                  string
	issueType              string
	customIssueDescription string
	description            string
	image                  string
	location               Location
	geo                    *GeoPoint
	senderName             string
	contactNumber          string
	remarks                string
	priority               vo.Priority
	status                 vo.Status
	rejectionReason        string
	resolution             string
	triage                 TriageResult
	duplicateOfID          *uint
	createdAt              time.Time
	updatedAt              time.Time
	approvedAt             *time.Time
	resolvedAt             *time.Time
	rejectedAt             *time.Time
	duplicateAt            *time.Time
	deletedAt              *time.Time
}

func NewReport(d Draft, now time.Time) (*Report, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if strings.TrimSpace(d.IssueType) == "" {
		return nil, fmt.Errorf("issue type is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		return nil, fmt.Errorf("description is required")
	}
	if d.Location.BarangayID == 0 || d.Location.SitioID == 0 {
		return nil, fmt.Errorf("barangay and sitio are required")
	}
	if !d.Priority.IsValid() {
		return nil, fmt.Errorf("invalid priority: %s", d.Priority)
	}

	return &Report{
		title:                  d.Title,
		issueType:              d.IssueType,
		customIssueDescription: d.CustomIssueDescription,
		description:            d.Description,
		image:                  d.Image,
		location:               d.Location,
		geo:                    d.Geo,
		senderName:             d.SenderName,
		contactNumber:          d.ContactNumber,
		remarks:                d.Remarks,
		priority:               d.Priority,
		status:                 vo.StatusPending,
		triage:                 d.Triage,
		createdAt:              now,
		updatedAt:              now,
	}, nil
}

// Snapshot is the full persisted state used to rebuild a Report.
type Snapshot struct {
	ID                     uint
	TrackingCode           string
	Title                  string
	IssueType              string
	CustomIssueDescription string
	Description            string
	Image                  string
	Location               Location
	Geo                    *GeoPoint
	SenderName             string
	ContactNumber          string
	Remarks                string
	Priority               vo.Priority
	Status                 vo.Status
	RejectionReason        string
	Resolution             string
	Triage                 TriageResult
	DuplicateOfID          *uint
	CreatedAt              time.Time
	UpdatedAt              time.Time
	ApprovedAt             *time.Time
	ResolvedAt             *time.Time
	RejectedAt             *time.Time
	DuplicateAt            *time.Time
	DeletedAt              *time.Time
}

func ReconstructReport(s Snapshot) (*Report, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("report ID cannot be zero")
	}
	if s.TrackingCode == "" {
		return nil, fmt.Errorf("tracking code is required")
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", s.Status)
	}
	if !s.Priority.IsValid() {
		return nil, fmt.Errorf("invalid priority: %s", s.Priority)
	}

	return &Report{
		id:                     s.ID,
		trackingCode:           s.TrackingCode,
		title:                  s.Title,
		issueType:              s.IssueType,
		customIssueDescription: s.CustomIssueDescription,
		description:            s.Description,
		image:                  s.Image,
		location:               s.Location,
		geo:                    s.Geo,
		senderName:             s.SenderName,
		contactNumber:          s.ContactNumber,
		remarks:                s.Remarks,
		priority:               s.Priority,
		status:                 s.Status,
		rejectionReason:        s.RejectionReason,
		resolution:             s.Resolution,
		triage:                 s.Triage,
		duplicateOfID:          s.DuplicateOfID,
		createdAt:              s.CreatedAt,
		updatedAt:              s.UpdatedAt,
		approvedAt:             s.ApprovedAt,
		resolvedAt:             s.ResolvedAt,
		rejectedAt:             s.RejectedAt,
		duplicateAt:            s.DuplicateAt,
		deletedAt:              s.DeletedAt,
	}, nil
}

// Snapshot exports the full state for persistence.
func (r *Report) Snapshot() Snapshot {
	return Snapshot{
		ID:                     r.id,
		TrackingCode:           r.trackingCode,
		Title:                  r.title,
		IssueType:              r.issueType,
		CustomIssueDescription: r.customIssueDescription,
		Description:            r.description,
		Image:                  r.image,
		Location:               r.location,
		Geo:                    r.geo,
		SenderName:             r.senderName,
		ContactNumber:          r.contactNumber,
		Remarks:                r.remarks,
		Priority:               r.priority,
		Status:                 r.status,
		RejectionReason:        r.rejectionReason,
		Resolution:             r.resolution,
		Triage:                 r.triage,
		DuplicateOfID:          r.duplicateOfID,
		CreatedAt:              r.createdAt,
		UpdatedAt:              r.updatedAt,
		ApprovedAt:             r.approvedAt,
		ResolvedAt:             r.resolvedAt,
		RejectedAt:             r.rejectedAt,
		DuplicateAt:            r.duplicateAt,
		DeletedAt:              r.deletedAt,
	}
}

func (r *Report) ID() uint                       { return r.id }
func (r *Report) TrackingCode() string           { return r.trackingCode }
func (r *Report) Title() string                  { return r.title }
func (r *Report) IssueType() string              { return r.issueType }
func (r *Report) CustomIssueDescription() string { return r.customIssueDescription }
func (r *Report) Description() string            { return r.description }
func (r *Report) Image() string                  { return r.image }
func (r *Report) Location() Location             { return r.location }
func (r *Report) Geo() *GeoPoint                 { return r.geo }
func (r *Report) SenderName() string             { return r.senderName }
func (r *Report) ContactNumber() string          { return r.contactNumber }
func (r *Report) Remarks() string                { return r.remarks }
func (r *Report) Priority() vo.Priority          { return r.priority }
func (r *Report) Status() vo.Status              { return r.status }
func (r *Report) RejectionReason() string        { return r.rejectionReason }
func (r *Report) Resolution() string             { return r.resolution }
func (r *Report) Triage() TriageResult           { return r.triage }
func (r *Report) IsEmergency() bool              { return r.triage.Emergency }
func (r *Report) DuplicateOfID() *uint           { return r.duplicateOfID }
func (r *Report) CreatedAt() time.Time           { return r.createdAt }
func (r *Report) UpdatedAt() time.Time           { return r.updatedAt }
func (r *Report) ApprovedAt() *time.Time         { return r.approvedAt }
func (r *Report) ResolvedAt() *time.Time         { return r.resolvedAt }
func (r *Report) RejectedAt() *time.Time         { return r.rejectedAt }
func (r *Report) DuplicateAt() *time.Time        { return r.duplicateAt }
func (r *Report) DeletedAt() *time.Time          { return r.deletedAt }
func (r *Report) IsTrashed() bool                { return r.deletedAt != nil }

func (r *Report) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("report ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("report ID cannot be zero")
	}
	r.id = id
	return nil
}

// AssignTrackingCode sets the code before the first insert. The code of a
// persisted report never changes.
func (r *Report) AssignTrackingCode(code TrackingCode) error {
	if r.id != 0 {
		return fmt.Errorf("tracking code of a persisted report cannot change")
	}
	r.trackingCode = code.String()
	return nil
}

func (r *Report) transition(next vo.Status, now time.Time) error {
	if !r.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move report %s from %s to %s",
			ErrInvalidTransition, r.trackingCode, r.status.Label(), next.Label())
	}
	r.status = next
	r.updatedAt = now
	return nil
}

// Approve moves a pending report to in progress.
func (r *Report) Approve(now time.Time) error {
	if err := r.transition(vo.StatusInProgress, now); err != nil {
		return err
	}
	r.approvedAt = &now
	return nil
}

// Resolve closes an in-progress report. resolution may be empty.
func (r *Report) Resolve(resolution string, now time.Time) error {
	if err := r.transition(vo.StatusResolved, now); err != nil {
		return err
	}
	r.resolution = resolution
	r.resolvedAt = &now
	return nil
}

// Reject refuses a pending report with a reason.
func (r *Report) Reject(reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("rejection reason is required")
	}
	if err := r.transition(vo.StatusRejected, now); err != nil {
		return err
	}
	r.rejectionReason = reason
	r.rejectedAt = &now
	return nil
}

// MarkDuplicateOf links r to primaryID. Re-linking to the same primary is a
// no-op and reports changed=false.
func (r *Report) MarkDuplicateOf(primaryID uint, now time.Time) (changed bool, err error) {
	if primaryID == 0 || primaryID == r.id {
		return false, fmt.Errorf("a report cannot be a duplicate of itself")
	}
	if r.status.IsDuplicate() {
		if r.duplicateOfID != nil && *r.duplicateOfID == primaryID {
			return false, nil
		}
		return false, fmt.Errorf("%w: report %s is already a duplicate of another report",
			ErrInvalidTransition, r.trackingCode)
	}
	if !r.status.IsMergeable() {
		return false, fmt.Errorf("%w: report %s is %s and cannot be merged",
			ErrInvalidTransition, r.trackingCode, r.status.Label())
	}
	if err := r.transition(vo.StatusDuplicate, now); err != nil {
		return false, err
	}
	r.duplicateOfID = &primaryID
	r.duplicateAt = &now
	return true, nil
}

// Revert steps a report back one state and clears what the left state stamped.
func (r *Report) Revert(now time.Time) error {
	target, ok := r.status.RevertTarget()
	if !ok {
		return fmt.Errorf("%w: report %s is %s and cannot be reverted",
			ErrInvalidTransition, r.trackingCode, r.status.Label())
	}
	switch r.status {
	case vo.StatusInProgress:
		r.approvedAt = nil
	case vo.StatusResolved:
		r.resolvedAt = nil
		r.resolution = ""
	case vo.StatusRejected:
		r.rejectedAt = nil
		r.rejectionReason = ""
	case vo.StatusDuplicate:
		r.duplicateAt = nil
		r.duplicateOfID = nil
	}
	r.status = target
	r.updatedAt = now
	return nil
}

// FoldDetailsFrom appends a merged duplicate's remarks and contact to r.
// Existing remarks are never overwritten.
func (r *Report) FoldDetailsFrom(dup *Report, now time.Time) {
	if dup.remarks != "" && r.remarks == "" {
		r.remarks = dup.remarks
	}
	if dup.contactNumber != "" && dup.contactNumber != r.contactNumber {
		line := fmt.Sprintf("Additional contact: %s (%s)", dup.contactNumber, dup.senderName)
		if !strings.Contains(r.remarks, line) {
			if r.remarks != "" {
				r.remarks += "\n"
			}
			r.remarks += line
		}
	}
	r.updatedAt = now
}
