package report

import (
	"context"
	"time"

	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
)

type Repository interface {
	// Create inserts r and sets its ID. A tracking code collision returns ErrTrackingCodeTaken.
	Create(ctx context.Context, r *Report) error
	Update(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id uint) (*Report, error)
	// GetByIDForUpdate reads a live report and holds a row lock on it until
	// the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint) (*Report, error)
	// GetByIDWithTrashed also returns soft-deleted reports.
	GetByIDWithTrashed(ctx context.Context, id uint) (*Report, error)
	GetByTrackingCode(ctx context.Context, code string) (*Report, error)
	List(ctx context.Context, filter ListFilter) ([]*Report, int64, error)

	// LastTrackingCode returns the highest code starting with dayPrefix across
	// all reports ever created, soft-deleted included. Empty when none exists.
	LastTrackingCode(ctx context.Context, dayPrefix string) (string, error)

	FindDuplicateCandidates(ctx context.Context, q CandidateQuery) ([]*Report, error)
	ListDuplicatesOf(ctx context.Context, primaryID uint) ([]*Report, error)
	CountDuplicatesOf(ctx context.Context, primaryID uint) (int64, error)
	RecordMerge(ctx context.Context, m MergeRecord) error

	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	// ForceDelete removes the row permanently, trashed or not.
	ForceDelete(ctx context.Context, id uint) error

	CountByStatus(ctx context.Context) (map[vo.Status]int64, error)
	// CountCreatedBetween returns how many live reports were created in [from, to].
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// ListFilter drives the staff report listing. Zero values mean "any".
type ListFilter struct {
	Status     *vo.Status
	Priority   *vo.Priority
	IssueType  string
	BarangayID uint
	Emergency  *bool
	Search     string
	From       time.Time
	To         time.Time
	Trashed    bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// CandidateQuery selects reports that may duplicate a candidate: same issue
// type and place, created in [From, To], excluding ExcludeID, trashed rows
// and rows already marked duplicate.
type CandidateQuery struct {
	IssueType string
	Location  Location
	From      time.Time
	To        time.Time
	ExcludeID uint
}

// MergeRecord is the audit row written for each newly merged duplicate.
type MergeRecord struct {
	PrimaryID   uint
	DuplicateID uint
	MergedBy    string
	Score       *float64
	CreatedAt   time.Time
}
