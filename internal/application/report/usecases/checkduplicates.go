package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/civicwatch/civicwatch/internal/application/report/dto"
	"github.com/civicwatch/civicwatch/internal/application/report/services"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

type duplicateFinder interface {
	FindDuplicates(ctx context.Context, c services.Candidate, asOf time.Time, opts services.DuplicateOptions) (*services.DuplicateResult, error)
}

// DuplicateDraft is a submission that has not been stored yet.
type DuplicateDraft struct {
	Title       string
	Description string
	IssueType   string
	BarangayID  uint
	SitioID     uint
}

// CheckDuplicatesQuery checks either a stored report (ReportID) or a draft.
type CheckDuplicatesQuery struct {
	ReportID    uint
	Draft       *DuplicateDraft
	WindowHours int
	Threshold   float64
}

type CheckDuplicatesUseCase struct {
	reportRepo report.Repository
	detector   duplicateFinder
	now        func() time.Time
	logger     logger.Interface
}

func NewCheckDuplicatesUseCase(reportRepo report.Repository, detector duplicateFinder, logger logger.Interface) *CheckDuplicatesUseCase {
	return &CheckDuplicatesUseCase{
		reportRepo: reportRepo,
		detector:   detector,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

func (uc *CheckDuplicatesUseCase) Execute(ctx context.Context, query CheckDuplicatesQuery) (*dto.DuplicateCheckDTO, error) {
	if query.WindowHours < 0 || query.WindowHours > 24*30 {
		return nil, errors.NewFieldValidationError("window_hours", "The window hours must be between 1 and 720.")
	}
	if query.Threshold < 0 || query.Threshold > 1 {
		return nil, errors.NewFieldValidationError("threshold", "The threshold must be between 0 and 1.")
	}

	var (
		candidate services.Candidate
		asOf      time.Time
	)
	switch {
	case query.ReportID != 0:
		r, err := uc.reportRepo.GetByID(ctx, query.ReportID)
		if err != nil {
			return nil, translateLoadError(uc.logger, query.ReportID, err)
		}
		candidate = services.CandidateFromReport(r)
		asOf = r.CreatedAt()
	case query.Draft != nil:
		if err := validateDraft(query.Draft); err != nil {
			return nil, err
		}
		candidate = services.Candidate{
			Title:       query.Draft.Title,
			Description: query.Draft.Description,
			IssueType:   strings.TrimSpace(query.Draft.IssueType),
			Location:    report.Location{BarangayID: query.Draft.BarangayID, SitioID: query.Draft.SitioID},
		}
		asOf = uc.now()
	default:
		return nil, errors.NewValidationError("report ID or draft is required")
	}

	res, err := uc.detector.FindDuplicates(ctx, candidate, asOf, services.DuplicateOptions{
		Window:    time.Duration(query.WindowHours) * time.Hour,
		Threshold: query.Threshold,
	})
	if err != nil {
		return nil, err
	}
	return toDuplicateCheckDTO(res), nil
}

func validateDraft(d *DuplicateDraft) error {
	fields := map[string]string{}
	if strings.TrimSpace(d.IssueType) == "" {
		fields["issue_type"] = "The issue type field is required."
	}
	if d.BarangayID == 0 {
		fields["barangay_id"] = "The barangay id field is required."
	}
	if d.SitioID == 0 {
		fields["sitio_id"] = "The sitio id field is required."
	}
	if len(fields) > 0 {
		return errors.NewFieldsValidationError(fields)
	}
	return nil
}

func toDuplicateCheckDTO(res *services.DuplicateResult) *dto.DuplicateCheckDTO {
	out := &dto.DuplicateCheckDTO{
		IsDuplicate: res.IsDuplicate,
		Matches:     make([]dto.DuplicateMatchDTO, 0, len(res.Matches)),
	}
	for _, m := range res.Matches {
		out.Matches = append(out.Matches, dto.DuplicateMatchDTO{
			Report:  dto.ToReportListItemDTO(m.Report),
			Score:   m.Score,
			Reasons: m.Reasons,
		})
	}
	if len(out.Matches) > 0 {
		out.BestMatch = &out.Matches[0]
	}
	return out
}
