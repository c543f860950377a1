package usecases

import (
	"context"
	stderrors "errors"

	"github.com/civicwatch/civicwatch/internal/application/report/dto"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

type GetReportQuery struct {
	ReportID uint
}

// GetReportUseCase returns the staff view of one report, trashed or not,
// together with the reports merged into it.
type GetReportUseCase struct {
	reportRepo report.Repository
	logger     logger.Interface
}

func NewGetReportUseCase(reportRepo report.Repository, logger logger.Interface) *GetReportUseCase {
	return &GetReportUseCase{reportRepo: reportRepo, logger: logger}
}

func (uc *GetReportUseCase) Execute(ctx context.Context, query GetReportQuery) (*dto.ReportDTO, error) {
	if query.ReportID == 0 {
		return nil, errors.NewValidationError("report ID is required")
	}

	r, err := uc.reportRepo.GetByIDWithTrashed(ctx, query.ReportID)
	if err != nil {
		return nil, translateLoadError(uc.logger, query.ReportID, err)
	}

	dups, err := uc.reportRepo.ListDuplicatesOf(ctx, r.ID())
	if err != nil {
		uc.logger.Errorw("failed to list duplicates", "report_id", r.ID(), "error", err)
		return nil, errors.NewInternalError("failed to load report")
	}

	out := dto.ToReportDTO(r)
	out.Duplicates = dto.ToReportListItemDTOs(dups)
	return out, nil
}

func translateLoadError(log logger.Interface, id uint, err error) error {
	if stderrors.Is(err, report.ErrNotFound) {
		return errors.NewNotFoundError("report not found", formatID(id))
	}
	log.Errorw("failed to load report", "report_id", id, "error", err)
	return errors.NewInternalError("failed to load report")
}
