package report

import "errors"

var (
	// ErrNotFound is returned by repositories when no live report matches.
	ErrNotFound = errors.New("report not found")
	// ErrTrackingCodeTaken is returned by Create when the unique index on
	// tracking_code rejects the insert.
	ErrTrackingCodeTaken = errors.New("tracking code already taken")
	// ErrInvalidTransition wraps every refused status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)
