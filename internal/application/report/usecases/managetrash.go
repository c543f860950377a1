package usecases

import (
	"context"
	"time"

	"github.com/civicwatch/civicwatch/internal/application/report/blobstore"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/db"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

type TrashAction string

const (
	ActionTrash       TrashAction = "trash"
	ActionRestore     TrashAction = "restore"
	ActionForceDelete TrashAction = "force-delete"
)

type ManageTrashCommand struct {
	ReportIDs []uint
	Action    TrashAction
	StaffName string
}

type ManageTrashResult struct {
	Affected []uint
}

// ManageTrashUseCase soft deletes, restores and permanently deletes reports.
// Permanent deletion also removes the stored image once the rows are gone.
type ManageTrashUseCase struct {
	reportRepo report.Repository
	txManager  db.Transactor
	blobs      blobstore.Store
	logger     logger.Interface
}

func NewManageTrashUseCase(
	reportRepo report.Repository,
	txManager db.Transactor,
	blobs blobstore.Store,
	logger logger.Interface,
) *ManageTrashUseCase {
	return &ManageTrashUseCase{
		reportRepo: reportRepo,
		txManager:  txManager,
		blobs:      blobs,
		logger:     logger,
	}
}

func (uc *ManageTrashUseCase) Execute(ctx context.Context, cmd ManageTrashCommand) (*ManageTrashResult, error) {
	uc.logger.Infow("executing manage trash use case",
		"action", cmd.Action,
		"count", len(cmd.ReportIDs),
		"staff", cmd.StaffName,
	)

	switch cmd.Action {
	case ActionTrash, ActionRestore, ActionForceDelete:
	default:
		return nil, errors.NewValidationError("invalid action")
	}
	ids, err := normalizeIDs(cmd.ReportIDs)
	if err != nil {
		return nil, err
	}

	var images []string
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		for _, id := range ids {
			image, err := uc.applyOne(txCtx, cmd.Action, id)
			if err != nil {
				return err
			}
			if image != "" {
				images = append(images, image)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, path := range images {
		uc.removeImage(path)
	}

	uc.logger.Infow("trash action completed", "action", cmd.Action, "count", len(ids), "staff", cmd.StaffName)
	return &ManageTrashResult{Affected: ids}, nil
}

// applyOne returns the image path to remove after commit, if any.
func (uc *ManageTrashUseCase) applyOne(ctx context.Context, action TrashAction, id uint) (string, error) {
	switch action {
	case ActionTrash:
		if _, err := uc.reportRepo.GetByID(ctx, id); err != nil {
			return "", translateLoadError(uc.logger, id, err)
		}
		if err := uc.reportRepo.SoftDelete(ctx, id); err != nil {
			uc.logger.Errorw("failed to trash report", "report_id", id, "error", err)
			return "", errors.NewInternalError("failed to delete report")
		}
		return "", nil

	case ActionRestore:
		r, err := uc.reportRepo.GetByIDWithTrashed(ctx, id)
		if err != nil {
			return "", translateLoadError(uc.logger, id, err)
		}
		if !r.IsTrashed() {
			return "", errors.NewConflictError("report is not in the trash", formatID(id))
		}
		if err := uc.reportRepo.Restore(ctx, id); err != nil {
			uc.logger.Errorw("failed to restore report", "report_id", id, "error", err)
			return "", errors.NewInternalError("failed to restore report")
		}
		return "", nil

	default:
		r, err := uc.reportRepo.GetByIDWithTrashed(ctx, id)
		if err != nil {
			return "", translateLoadError(uc.logger, id, err)
		}
		n, err := uc.reportRepo.CountDuplicatesOf(ctx, id)
		if err != nil {
			uc.logger.Errorw("failed to count duplicates", "report_id", id, "error", err)
			return "", errors.NewInternalError("failed to delete report")
		}
		if n > 0 {
			return "", errors.NewConflictError("report has duplicates merged into it; revert them first", formatID(id))
		}
		if err := uc.reportRepo.ForceDelete(ctx, id); err != nil {
			uc.logger.Errorw("failed to force delete report", "report_id", id, "error", err)
			return "", errors.NewInternalError("failed to delete report")
		}
		return r.Image(), nil
	}
}

func (uc *ManageTrashUseCase) removeImage(path string) {
	if uc.blobs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := uc.blobs.Delete(ctx, path); err != nil {
		uc.logger.Warnw("failed to remove report image", "path", path, "error", err)
	}
}
