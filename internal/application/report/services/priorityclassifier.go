package services

import (
	"context"
	stderrors "errors"
	"strings"
	"unicode"

	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

// PriorityStrategy returns a priority and true when it recognises the issue type.
type PriorityStrategy interface {
	Classify(ctx context.Context, issueType string) (vo.Priority, bool)
}

// PriorityClassifier tries each strategy in order and falls back to Medium.
type PriorityClassifier struct {
	strategies []PriorityStrategy
}

func NewPriorityClassifier(strategies ...PriorityStrategy) *PriorityClassifier {
	return &PriorityClassifier{strategies: strategies}
}

func (c *PriorityClassifier) Classify(ctx context.Context, issueType string) vo.Priority {
	for _, s := range c.strategies {
		if p, ok := s.Classify(ctx, issueType); ok {
			return p
		}
	}
	return vo.PriorityMedium
}

// TaxonomyStrategy uses the priority configured on an active issue type of the same name.
type TaxonomyStrategy struct {
	repo   issuetype.Repository
	logger logger.Interface
}

func NewTaxonomyStrategy(repo issuetype.Repository, log logger.Interface) *TaxonomyStrategy {
	return &TaxonomyStrategy{repo: repo, logger: log}
}

func (s *TaxonomyStrategy) Classify(ctx context.Context, name string) (vo.Priority, bool) {
	it, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if !stderrors.Is(err, issuetype.ErrNotFound) {
			s.logger.Warnw("issue type lookup failed, falling back", "issue_type", name, "error", err)
		}
		return "", false
	}
	if !it.Active || !it.Priority.IsValid() {
		return "", false
	}
	return it.Priority, true
}

// KeywordStrategy marks issue types containing a high keyword as a whole
// word as High, and issue types equal to a low phrase as Low. Both
// comparisons ignore letter case.
type KeywordStrategy struct {
	high []string
	low  map[string]bool
}

func NewKeywordStrategy(highKeywords, lowPhrases []string) *KeywordStrategy {
	s := &KeywordStrategy{low: make(map[string]bool, len(lowPhrases))}
	for _, k := range highKeywords {
		if norm := normalizeWords(k); norm != "" {
			s.high = append(s.high, norm)
		}
	}
	for _, p := range lowPhrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			s.low[p] = true
		}
	}
	return s
}

func (s *KeywordStrategy) Classify(_ context.Context, name string) (vo.Priority, bool) {
	padded := " " + normalizeWords(name) + " "
	for _, k := range s.high {
		if strings.Contains(padded, " "+k+" ") {
			return vo.PriorityHigh, true
		}
	}
	if s.low[strings.ToLower(strings.TrimSpace(name))] {
		return vo.PriorityLow, true
	}
	return "", false
}

// normalizeWords lower-cases s and joins its letter/digit runs with single spaces.
func normalizeWords(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
