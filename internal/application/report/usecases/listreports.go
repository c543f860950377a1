package usecases

import (
	"context"
	"strings"

	"github.com/civicwatch/civicwatch/internal/application/report/dto"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/shared/biztime"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

var sortableColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"priority_level": true,
	"status":         true,
	"tracking_code":  true,
}

type ListReportsQuery struct {
	Status     *string
	Priority   *string
	IssueType  string
	BarangayID uint
	Emergency  *bool
	Search     string
	// DateFrom and DateTo are YYYY-MM-DD business days, both inclusive.
	DateFrom  string
	DateTo    string
	Trashed   bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

type ListReportsResult struct {
	Reports    []dto.ReportListItemDTO
	TotalCount int64
	Page       int
	PageSize   int
}

type ListReportsUseCase struct {
	reportRepo report.Repository
	logger     logger.Interface
}

func NewListReportsUseCase(reportRepo report.Repository, logger logger.Interface) *ListReportsUseCase {
	return &ListReportsUseCase{reportRepo: reportRepo, logger: logger}
}

func (uc *ListReportsUseCase) Execute(ctx context.Context, query ListReportsQuery) (*ListReportsResult, error) {
	uc.logger.Infow("executing list reports use case",
		"page", query.Page,
		"page_size", query.PageSize,
		"trashed", query.Trashed,
	)

	filter, err := uc.buildFilter(query)
	if err != nil {
		return nil, err
	}

	reports, total, err := uc.reportRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list reports", "error", err)
		return nil, errors.NewInternalError("failed to list reports")
	}

	return &ListReportsResult{
		Reports:    dto.ToReportListItemDTOs(reports),
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

func (uc *ListReportsUseCase) buildFilter(query ListReportsQuery) (report.ListFilter, error) {
	p := utils.ValidatePagination(query.Page, query.PageSize)
	filter := report.ListFilter{
		IssueType:  strings.TrimSpace(query.IssueType),
		BarangayID: query.BarangayID,
		Emergency:  query.Emergency,
		Search:     strings.TrimSpace(query.Search),
		Trashed:    query.Trashed,
		Page:       p.Page,
		PageSize:   p.PageSize,
		SortBy:     "created_at",
		SortOrder:  "desc",
	}

	if query.SortBy != "" {
		if !sortableColumns[query.SortBy] {
			return filter, errors.NewFieldValidationError("sort_by", "The selected sort by is invalid.")
		}
		filter.SortBy = query.SortBy
	}
	switch strings.ToLower(query.SortOrder) {
	case "":
	case "asc", "desc":
		filter.SortOrder = strings.ToLower(query.SortOrder)
	default:
		return filter, errors.NewFieldValidationError("sort_order", "The sort order must be one of [asc desc].")
	}

	if query.Status != nil && *query.Status != "" {
		status, err := vo.NewStatus(*query.Status)
		if err != nil {
			return filter, errors.NewFieldValidationError("status", "The selected status is invalid.")
		}
		filter.Status = &status
	}
	if query.Priority != nil && *query.Priority != "" {
		priority, err := vo.NewPriority(*query.Priority)
		if err != nil {
			return filter, errors.NewFieldValidationError("priority_level", "The selected priority level is invalid.")
		}
		filter.Priority = &priority
	}

	if query.DateFrom != "" {
		from, err := biztime.ParseDateInBizTimezone(query.DateFrom)
		if err != nil {
			return filter, errors.NewFieldValidationError("date_from", "The date from is not a valid date.")
		}
		filter.From = from
	}
	if query.DateTo != "" {
		to, err := biztime.ParseDateInBizTimezone(query.DateTo)
		if err != nil {
			return filter, errors.NewFieldValidationError("date_to", "The date to is not a valid date.")
		}
		filter.To = biztime.EndOfDayUTC(to)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return filter, errors.NewFieldValidationError("date_to", "The date to must be a date after or equal to date from.")
	}

	return filter, nil
}
