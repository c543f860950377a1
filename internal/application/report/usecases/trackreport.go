package usecases

import (
	"context"
	stderrors "errors"

	"github.com/civicwatch/civicwatch/internal/application/report/dto"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

const ErrMsgTrackingCodeUnknown = "Report not found. Please check your tracking code."

type TrackReportQuery struct {
	TrackingCode string
}

// TrackReportUseCase is the public status lookup by tracking code.
type TrackReportUseCase struct {
	reportRepo report.Repository
	logger     logger.Interface
}

func NewTrackReportUseCase(reportRepo report.Repository, logger logger.Interface) *TrackReportUseCase {
	return &TrackReportUseCase{reportRepo: reportRepo, logger: logger}
}

func (uc *TrackReportUseCase) Execute(ctx context.Context, query TrackReportQuery) (*dto.TrackedReportDTO, error) {
	code := report.NormalizeTrackingCode(query.TrackingCode)
	if code == "" {
		return nil, errors.NewFieldValidationError("tracking_code", "The tracking code field is required.")
	}

	r, err := uc.reportRepo.GetByTrackingCode(ctx, code)
	if err != nil {
		if stderrors.Is(err, report.ErrNotFound) {
			return nil, errors.NewNotFoundError(ErrMsgTrackingCodeUnknown)
		}
		uc.logger.Errorw("failed to look up tracking code", "tracking_code", code, "error", err)
		return nil, errors.NewInternalError("failed to look up report")
	}

	primaryCode := ""
	if id := r.DuplicateOfID(); id != nil {
		primary, err := uc.reportRepo.GetByIDWithTrashed(ctx, *id)
		switch {
		case err == nil:
			primaryCode = primary.TrackingCode()
		case stderrors.Is(err, report.ErrNotFound):
			uc.logger.Warnw("duplicate points at a missing report", "tracking_code", code, "primary_id", *id)
		default:
			uc.logger.Errorw("failed to load primary report", "primary_id", *id, "error", err)
			return nil, errors.NewInternalError("failed to look up report")
		}
	}

	return dto.ToTrackedReportDTO(r, primaryCode), nil
}
