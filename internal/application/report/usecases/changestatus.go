package usecases

import (
	"context"
	stderrors "errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/civicwatch/civicwatch/internal/application/report/dto"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/db"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

const MaxRejectionReasonLength = 500

type StatusAction string

const (
	ActionApprove StatusAction = "approve"
	ActionResolve StatusAction = "resolve"
	ActionReject  StatusAction = "reject"
	ActionRevert  StatusAction = "revert"
)

func (a StatusAction) IsValid() bool {
	switch a {
	case ActionApprove, ActionResolve, ActionReject, ActionRevert:
		return true
	}
	return false
}

// ChangeReportStatusCommand moves one or more reports through the workflow.
// A bulk command is all-or-nothing.
type ChangeReportStatusCommand struct {
	ReportIDs  []uint
	Action     StatusAction
	Reason     string
	Resolution string
	StaffName  string
}

type ChangeReportStatusResult struct {
	Reports []dto.ReportListItemDTO
}

type ChangeReportStatusUseCase struct {
	reportRepo report.Repository
	txManager  db.Transactor
	now        func() time.Time
	logger     logger.Interface
}

func NewChangeReportStatusUseCase(
	reportRepo report.Repository,
	txManager db.Transactor,
	logger logger.Interface,
) *ChangeReportStatusUseCase {
	return &ChangeReportStatusUseCase{
		reportRepo: reportRepo,
		txManager:  txManager,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

func (uc *ChangeReportStatusUseCase) Execute(ctx context.Context, cmd ChangeReportStatusCommand) (*ChangeReportStatusResult, error) {
	uc.logger.Infow("executing change report status use case",
		"action", cmd.Action,
		"count", len(cmd.ReportIDs),
		"staff", cmd.StaffName,
	)

	ids, err := uc.validateCommand(&cmd)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	updated := make([]*report.Report, 0, len(ids))
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		for _, id := range ids {
			r, err := uc.reportRepo.GetByID(txCtx, id)
			if err != nil {
				return translateLoadError(uc.logger, id, err)
			}
			if err := uc.apply(r, cmd, now); err != nil {
				return translateTransitionError(err)
			}
			if err := uc.reportRepo.Update(txCtx, r); err != nil {
				uc.logger.Errorw("failed to update report status", "report_id", id, "error", err)
				return errors.NewInternalError("failed to update report status")
			}
			updated = append(updated, r)
		}
		return nil
	})
	if err != nil {
		uc.logger.Warnw("report status change rolled back", "action", cmd.Action, "error", err)
		return nil, err
	}

	uc.logger.Infow("report status changed", "action", cmd.Action, "count", len(updated), "staff", cmd.StaffName)
	return &ChangeReportStatusResult{Reports: dto.ToReportListItemDTOs(updated)}, nil
}

func (uc *ChangeReportStatusUseCase) apply(r *report.Report, cmd ChangeReportStatusCommand, now time.Time) error {
	switch cmd.Action {
	case ActionApprove:
		return r.Approve(now)
	case ActionResolve:
		return r.Resolve(cmd.Resolution, now)
	case ActionReject:
		return r.Reject(cmd.Reason, now)
	default:
		return r.Revert(now)
	}
}

func (uc *ChangeReportStatusUseCase) validateCommand(cmd *ChangeReportStatusCommand) ([]uint, error) {
	if !cmd.Action.IsValid() {
		return nil, errors.NewValidationError("invalid action")
	}
	ids, err := normalizeIDs(cmd.ReportIDs)
	if err != nil {
		return nil, err
	}

	cmd.Reason = strings.TrimSpace(cmd.Reason)
	cmd.Resolution = strings.TrimSpace(cmd.Resolution)
	if cmd.Action == ActionReject {
		if cmd.Reason == "" {
			return nil, errors.NewFieldValidationError("rejection_reason", "The rejection reason field is required.")
		}
		if utf8.RuneCountInString(cmd.Reason) > MaxRejectionReasonLength {
			return nil, errors.NewFieldValidationError("rejection_reason", "The rejection reason may not be greater than 500 characters.")
		}
	}
	return ids, nil
}

func translateTransitionError(err error) error {
	if stderrors.Is(err, report.ErrInvalidTransition) {
		return errors.NewConflictError(err.Error())
	}
	return errors.NewValidationError(err.Error())
}
