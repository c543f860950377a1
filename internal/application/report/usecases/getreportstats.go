package usecases

import (
	"context"
	"time"

	"github.com/civicwatch/civicwatch/internal/application/report/dto"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/shared/biztime"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

type GetReportStatsQuery struct {
	// Year selects the monthly breakdown. Zero means the current business year.
	Year int
}

type GetReportStatsUseCase struct {
	reportRepo report.Repository
	now        func() time.Time
	logger     logger.Interface
}

func NewGetReportStatsUseCase(reportRepo report.Repository, logger logger.Interface) *GetReportStatsUseCase {
	return &GetReportStatsUseCase{reportRepo: reportRepo, now: biztime.NowUTC, logger: logger}
}

func (uc *GetReportStatsUseCase) Execute(ctx context.Context, query GetReportStatsQuery) (*dto.ReportStatsDTO, error) {
	year := query.Year
	if year == 0 {
		year = biztime.Year(uc.now())
	}
	if year < 2000 || year > 9999 {
		return nil, errors.NewFieldValidationError("year", "The year must be a valid year.")
	}

	counts, err := uc.reportRepo.CountByStatus(ctx)
	if err != nil {
		uc.logger.Errorw("failed to count reports by status", "error", err)
		return nil, errors.NewInternalError("failed to load statistics")
	}

	stats := &dto.ReportStatsDTO{
		ByStatus: make(map[string]int64, len(vo.AllStatuses())),
		Year:     year,
		Monthly:  make([]dto.MonthlyCountDTO, 0, 12),
	}
	for _, s := range vo.AllStatuses() {
		stats.ByStatus[s.String()] = counts[s]
		stats.Total += counts[s]
	}

	for m := time.January; m <= time.December; m++ {
		n, err := uc.reportRepo.CountCreatedBetween(ctx, biztime.StartOfMonthUTC(year, m), biztime.EndOfMonthUTC(year, m))
		if err != nil {
			uc.logger.Errorw("failed to count reports for month", "year", year, "month", int(m), "error", err)
			return nil, errors.NewInternalError("failed to load statistics")
		}
		stats.Monthly = append(stats.Monthly, dto.MonthlyCountDTO{Month: int(m), Count: n})
	}

	return stats, nil
}
