package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

const (
	DefaultDuplicateWindow    = 24 * time.Hour
	DefaultDuplicateThreshold = 0.7

	titleReasonThreshold       = 0.7
	descriptionReasonThreshold = 0.5
)

type DuplicateMatch struct {
	Report  *report.Report
	Score   float64
	Reasons []string
}

type DuplicateResult struct {
	IsDuplicate bool
	Matches     []DuplicateMatch
	BestMatch   *DuplicateMatch
}

// DuplicateOptions overrides the detector defaults for one call. Zero fields keep the default.
type DuplicateOptions struct {
	Window    time.Duration
	Threshold float64
}

// DuplicateDetector scores a candidate against recent reports of the same
// issue type at the same place.
type DuplicateDetector struct {
	repo      report.Repository
	window    time.Duration
	threshold float64
	now       func() time.Time
	logger    logger.Interface
}

func NewDuplicateDetector(repo report.Repository, window time.Duration, threshold float64, log logger.Interface) *DuplicateDetector {
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}
	return &DuplicateDetector{
		repo:      repo,
		window:    window,
		threshold: threshold,
		now:       time.Now,
		logger:    log,
	}
}

// FindDuplicates looks back one window from asOf. A candidate matches when
// its score is at least the threshold; matches are ordered best first.
func (d *DuplicateDetector) FindDuplicates(ctx context.Context, c Candidate, asOf time.Time, opts DuplicateOptions) (*DuplicateResult, error) {
	window, threshold := d.window, d.threshold
	if opts.Window > 0 {
		window = opts.Window
	}
	if opts.Threshold > 0 {
		threshold = opts.Threshold
	}

	candidates, err := d.repo.FindDuplicateCandidates(ctx, report.CandidateQuery{
		IssueType: c.IssueType,
		Location:  c.Location,
		From:      asOf.Add(-window),
		To:        asOf,
		ExcludeID: c.ID,
	})
	if err != nil {
		d.logger.Errorw("failed to load duplicate candidates", "report_id", c.ID, "error", err)
		return nil, errors.NewInternalError("failed to check for duplicates")
	}

	result := &DuplicateResult{Matches: []DuplicateMatch{}}
	now := d.now()
	for _, existing := range candidates {
		other := CandidateFromReport(existing)
		score := Similarity(c, other)
		if score < threshold {
			continue
		}
		result.Matches = append(result.Matches, DuplicateMatch{
			Report:  existing,
			Score:   score,
			Reasons: SimilarityReasons(c, other, existing.CreatedAt(), now),
		})
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Score > result.Matches[j].Score
	})
	if len(result.Matches) > 0 {
		result.IsDuplicate = true
		result.BestMatch = &result.Matches[0]
	}

	d.logger.Debugw("duplicate check finished",
		"report_id", c.ID,
		"candidates", len(candidates),
		"matches", len(result.Matches),
	)
	return result, nil
}

// SimilarityReasons explains a match for staff review.
func SimilarityReasons(a, b Candidate, originalCreatedAt, now time.Time) []string {
	var reasons []string
	if a.Location.SameAs(b.Location) {
		reasons = append(reasons, "Same location (Barangay and Sitio)")
	}
	if a.IssueType == b.IssueType {
		reasons = append(reasons, "Same issue type")
	}
	if s := TextSimilarity(a.Title, b.Title); s > titleReasonThreshold {
		reasons = append(reasons, fmt.Sprintf("Similar title (%.1f%% match)", s*100))
	}
	if s := TextSimilarity(a.Description, b.Description); s > descriptionReasonThreshold {
		reasons = append(reasons, fmt.Sprintf("Similar description (%.1f%% match)", s*100))
	}
	reasons = append(reasons, "Original report submitted "+humanize.RelTime(originalCreatedAt, now, "ago", "from now"))
	return reasons
}
