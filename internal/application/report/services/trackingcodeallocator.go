package services

import (
	"context"
	stderrors "errors"

	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/biztime"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

// ErrMsgAllocationExhausted is shown when every allocation attempt collided.
const ErrMsgAllocationExhausted = "unable to allocate tracking code, please try again"

// TrackingCodeAllocator numbers reports per business day. The unique index
// on tracking_code is the only source of truth: a collision on insert is
// retried with the next sequence, up to maxAttempts inserts in total.
type TrackingCodeAllocator struct {
	repo        report.Repository
	prefix      string
	maxAttempts int
	logger      logger.Interface
}

func NewTrackingCodeAllocator(repo report.Repository, prefix string, maxAttempts int, log logger.Interface) *TrackingCodeAllocator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TrackingCodeAllocator{
		repo:        repo,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		logger:      log,
	}
}

// CreateWithCode assigns r a code for the business day of its creation time
// and inserts it. The candidate sequence is max(last issued + 1, previous
// attempt + 1) so a retry never reuses a number that already collided.
func (a *TrackingCodeAllocator) CreateWithCode(ctx context.Context, r *report.Report) (report.TrackingCode, error) {
	day := biztime.DayStamp(r.CreatedAt())
	dayPrefix := report.DayPrefix(a.prefix, day)
	previous := 0

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		seq, err := a.nextSequence(ctx, dayPrefix)
		if err != nil {
			return report.TrackingCode{}, err
		}
		if seq <= previous {
			seq = previous + 1
		}

		code, err := report.NewTrackingCode(a.prefix, day, seq)
		if err != nil {
			return report.TrackingCode{}, errors.NewInternalError("failed to build tracking code", err.Error())
		}
		if err := r.AssignTrackingCode(code); err != nil {
			return report.TrackingCode{}, errors.NewInternalError("failed to assign tracking code", err.Error())
		}

		err = a.repo.Create(ctx, r)
		if err == nil {
			return code, nil
		}
		if !stderrors.Is(err, report.ErrTrackingCodeTaken) {
			a.logger.Errorw("failed to insert report", "tracking_code", code.String(), "error", err)
			return report.TrackingCode{}, errors.NewInternalError("failed to save report")
		}

		a.logger.Warnw("tracking code collision, retrying",
			"tracking_code", code.String(),
			"attempt", attempt,
			"max_attempts", a.maxAttempts,
		)
		previous = seq
	}

	return report.TrackingCode{}, errors.NewConflictError(ErrMsgAllocationExhausted)
}

func (a *TrackingCodeAllocator) nextSequence(ctx context.Context, dayPrefix string) (int, error) {
	last, err := a.repo.LastTrackingCode(ctx, dayPrefix)
	if err != nil {
		a.logger.Errorw("failed to read last tracking code", "prefix", dayPrefix, "error", err)
		return 0, errors.NewInternalError("failed to allocate tracking code")
	}
	if last == "" {
		return 1, nil
	}
	parsed, err := report.ParseTrackingCode(last)
	if err != nil {
		// A hand-edited code must not stall numbering; collisions are still caught on insert.
		a.logger.Warnw("ignoring unparsable tracking code", "tracking_code", last, "error", err)
		return 1, nil
	}
	return parsed.Sequence() + 1, nil
}
