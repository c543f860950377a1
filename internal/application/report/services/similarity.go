package services

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/civicwatch/civicwatch/internal/domain/report"
)

// Similarity weights. They sum to 1.
const (
	WeightLocation    = 0.4
	WeightIssueType   = 0.3
	WeightTitle       = 0.2
	WeightDescription = 0.1
)

// Candidate is the comparable view of a report or of a not yet persisted submission.
type Candidate struct {
	ID          uint
	Title       string
	Description string
	IssueType   string
	Location    report.Location
}

func CandidateFromReport(r *report.Report) Candidate {
	return Candidate{
		ID:          r.ID(),
		Title:       r.Title(),
		Description: r.Description(),
		IssueType:   r.IssueType(),
		Location:    r.Location(),
	}
}

// TextSimilarity is 1 - levenshtein(a, b) / max(len(a), len(b)) over the
// trimmed, lower-cased texts, in [0, 1]. Identical texts, including two
// empty ones, score 1.
func TextSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	dist := levenshtein.ComputeDistance(a, b)
	return math.Max(0, 1-float64(dist)/float64(maxLen))
}

// Similarity is the weighted score of two candidates, rounded to 3 decimals.
// It is symmetric.
func Similarity(a, b Candidate) float64 {
	score := 0.0
	if a.Location.SameAs(b.Location) {
		score += WeightLocation
	}
	if a.IssueType == b.IssueType {
		score += WeightIssueType
	}
	score += WeightTitle * TextSimilarity(a.Title, b.Title)
	score += WeightDescription * TextSimilarity(a.Description, b.Description)
	return math.Round(score*1000) / 1000
}
