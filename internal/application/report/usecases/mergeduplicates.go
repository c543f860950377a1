package usecases

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"github.com/civicwatch/civicwatch/internal/application/report/services"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/db"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

const ErrMsgMergeFailed = "failed to mark duplicates"

type MergeDuplicatesCommand struct {
	PrimaryID    uint
	DuplicateIDs []uint
	// FoldRemarks copies remarks and extra contact numbers onto the primary.
	FoldRemarks bool
	MergedBy    string
}

type MergeDuplicatesResult struct {
	PrimaryID uint   `json:"primary_id"`
	Merged    []uint `json:"merged"`
	// AlreadyMerged lists duplicates that already pointed at the primary.
	AlreadyMerged []uint `json:"already_merged"`
}

// MergeDuplicatesUseCase links duplicates to a primary report in one
// transaction. Re-merging into the same primary is a no-op, and links never
// form chains.
type MergeDuplicatesUseCase struct {
	reportRepo report.Repository
	txManager  db.Transactor
	now        func() time.Time
	logger     logger.Interface
}

func NewMergeDuplicatesUseCase(reportRepo report.Repository, txManager db.Transactor, logger logger.Interface) *MergeDuplicatesUseCase {
	return &MergeDuplicatesUseCase{
		reportRepo: reportRepo,
		txManager:  txManager,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

func (uc *MergeDuplicatesUseCase) Execute(ctx context.Context, cmd MergeDuplicatesCommand) (*MergeDuplicatesResult, error) {
	uc.logger.Infow("executing merge duplicates use case",
		"primary_id", cmd.PrimaryID,
		"duplicates", len(cmd.DuplicateIDs),
		"merged_by", cmd.MergedBy,
	)

	if cmd.PrimaryID == 0 {
		return nil, errors.NewFieldValidationError("primary_report_id", "The primary report id field is required.")
	}
	dupIDs, err := normalizeIDs(cmd.DuplicateIDs)
	if err != nil {
		return nil, errors.NewFieldValidationError("duplicate_ids", "The duplicate ids field is required.")
	}
	for _, id := range dupIDs {
		if id == cmd.PrimaryID {
			return nil, errors.NewFieldValidationError("duplicate_ids", "A report cannot be marked as a duplicate of itself.")
		}
	}

	result := &MergeDuplicatesResult{PrimaryID: cmd.PrimaryID}
	now := uc.now()
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		result.Merged, result.AlreadyMerged = nil, nil
		return uc.merge(txCtx, cmd, dupIDs, now, result)
	})
	if err != nil {
		uc.logger.Warnw("merge rolled back", "primary_id", cmd.PrimaryID, "error", err)
		return nil, err
	}

	uc.logger.Infow("duplicates merged",
		"primary_id", cmd.PrimaryID,
		"merged", result.Merged,
		"already_merged", result.AlreadyMerged,
	)
	return result, nil
}

func (uc *MergeDuplicatesUseCase) merge(ctx context.Context, cmd MergeDuplicatesCommand, dupIDs []uint, now time.Time, result *MergeDuplicatesResult) error {
	locked, err := uc.lockReports(ctx, cmd.PrimaryID, dupIDs)
	if err != nil {
		return err
	}

	primary := locked[cmd.PrimaryID]
	if primary.Status().IsDuplicate() {
		return errors.NewConflictError("the primary report is itself a duplicate", formatID(primary.ID()))
	}

	primaryChanged := false
	for _, id := range dupIDs {
		dup := locked[id]

		// Counted only after every row is locked, so a merge that committed
		// while this one waited is visible here.
		children, err := uc.reportRepo.CountDuplicatesOf(ctx, id)
		if err != nil {
			uc.logger.Errorw("failed to count duplicates", "report_id", id, "error", err)
			return errors.NewInternalError(ErrMsgMergeFailed)
		}
		if children > 0 {
			return errors.NewConflictError("report already has duplicates merged into it", formatID(id))
		}

		changed, err := dup.MarkDuplicateOf(primary.ID(), now)
		if err != nil {
			return translateTransitionError(err)
		}
		if !changed {
			result.AlreadyMerged = append(result.AlreadyMerged, id)
			continue
		}

		if err := uc.reportRepo.Update(ctx, dup); err != nil {
			uc.logger.Errorw("failed to mark report as duplicate", "report_id", id, "error", err)
			return errors.NewInternalError(ErrMsgMergeFailed)
		}

		score := services.Similarity(services.CandidateFromReport(primary), services.CandidateFromReport(dup))
		if err := uc.reportRepo.RecordMerge(ctx, report.MergeRecord{
			PrimaryID:   primary.ID(),
			DuplicateID: id,
			MergedBy:    cmd.MergedBy,
			Score:       &score,
			CreatedAt:   now,
		}); err != nil {
			uc.logger.Errorw("failed to record merge", "primary_id", primary.ID(), "duplicate_id", id, "error", err)
			return errors.NewInternalError(ErrMsgMergeFailed)
		}

		if cmd.FoldRemarks {
			primary.FoldDetailsFrom(dup, now)
			primaryChanged = true
		}
		result.Merged = append(result.Merged, id)
	}

	if primaryChanged {
		if err := uc.reportRepo.Update(ctx, primary); err != nil {
			uc.logger.Errorw("failed to update primary report", "report_id", primary.ID(), "error", err)
			return errors.NewInternalError(ErrMsgMergeFailed)
		}
	}
	return nil
}

// lockReports row-locks the primary and every duplicate in ascending id
// order. Concurrent merges over overlapping reports therefore queue instead
// of deadlocking, and a chain cannot slip in between two of them.
func (uc *MergeDuplicatesUseCase) lockReports(ctx context.Context, primaryID uint, dupIDs []uint) (map[uint]*report.Report, error) {
	ids := make([]uint, 0, len(dupIDs)+1)
	ids = append(ids, primaryID)
	ids = append(ids, dupIDs...)
	slices.Sort(ids)

	locked := make(map[uint]*report.Report, len(ids))
	for _, id := range ids {
		r, err := uc.reportRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, uc.loadError(id, err)
		}
		locked[id] = r
	}
	return locked, nil
}

func (uc *MergeDuplicatesUseCase) loadError(id uint, err error) error {
	if stderrors.Is(err, report.ErrNotFound) {
		return errors.NewNotFoundError("report not found", formatID(id))
	}
	uc.logger.Errorw("failed to load report", "report_id", id, "error", err)
	return errors.NewInternalError(ErrMsgMergeFailed)
}
