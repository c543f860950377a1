package usecases

import (
	"context"

	"github.com/civicwatch/civicwatch/internal/application/report/dto"
)

type SubmitReportExecutor interface {
	Execute(ctx context.Context, cmd SubmitReportCommand) (*SubmitReportResult, error)
}

type TrackReportExecutor interface {
	Execute(ctx context.Context, query TrackReportQuery) (*dto.TrackedReportDTO, error)
}

type GetReportExecutor interface {
	Execute(ctx context.Context, query GetReportQuery) (*dto.ReportDTO, error)
}

type ListReportsExecutor interface {
	Execute(ctx context.Context, query ListReportsQuery) (*ListReportsResult, error)
}

type ChangeReportStatusExecutor interface {
	Execute(ctx context.Context, cmd ChangeReportStatusCommand) (*ChangeReportStatusResult, error)
}

type ManageTrashExecutor interface {
	Execute(ctx context.Context, cmd ManageTrashCommand) (*ManageTrashResult, error)
}

type CheckDuplicatesExecutor interface {
	Execute(ctx context.Context, query CheckDuplicatesQuery) (*dto.DuplicateCheckDTO, error)
}

type MergeDuplicatesExecutor interface {
	Execute(ctx context.Context, cmd MergeDuplicatesCommand) (*MergeDuplicatesResult, error)
}

type GetReportStatsExecutor interface {
	Execute(ctx context.Context, query GetReportStatsQuery) (*dto.ReportStatsDTO, error)
}
