package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
)

var (
	defaultHighKeywords = []string{"fire", "accident"}
	defaultLowPhrases   = []string{
		"Public karaoke complaints (non-urgent)",
		"Loud sounds from establishments during restricted hours",
	}
)

func TestKeywordStrategy(t *testing.T) {
	s := NewKeywordStrategy(defaultHighKeywords, defaultLowPhrases)

	tests := []struct {
		issueType string
		want      vo.Priority
		ok        bool
	}{
		{"fire", vo.PriorityHigh, true},
		{"House Fire", vo.PriorityHigh, true},
		{"Road accident (minor)", vo.PriorityHigh, true},
		{"Firecrackers", "", false},
		{"public karaoke complaints (non-urgent)", vo.PriorityLow, true},
		{"Public karaoke complaints", "", false},
		{"Potholes", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.issueType, func(t *testing.T) {
			got, ok := s.Classify(context.Background(), tt.issueType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriorityClassifier_TaxonomyFirstThenKeywords(t *testing.T) {
	repo := &mockIssueTypeRepository{
		GetByNameFunc: func(ctx context.Context, name string) (*issuetype.IssueType, error) {
			switch name {
			case "Flooding":
				return &issuetype.IssueType{Name: name, Active: true, Priority: vo.PriorityHigh}, nil
			case "Fire hydrant leak":
				return &issuetype.IssueType{Name: name, Active: true, Priority: vo.PriorityLow}, nil
			case "Retired fire type":
				return &issuetype.IssueType{Name: name, Active: false, Priority: vo.PriorityLow}, nil
			case "Broken lookup":
				return nil, errors.New("db down")
			}
			return nil, issuetype.ErrNotFound
		},
	}
	c := NewPriorityClassifier(
		NewTaxonomyStrategy(repo, newTestLogger()),
		NewKeywordStrategy(defaultHighKeywords, defaultLowPhrases),
	)
	ctx := context.Background()

	assert.Equal(t, vo.PriorityHigh, c.Classify(ctx, "Flooding"))
	assert.Equal(t, vo.PriorityLow, c.Classify(ctx, "Fire hydrant leak"), "taxonomy wins over keywords")
	assert.Equal(t, vo.PriorityHigh, c.Classify(ctx, "Retired fire type"), "inactive types fall through")
	assert.Equal(t, vo.PriorityHigh, c.Classify(ctx, "fire"), "keyword fallback")
	assert.Equal(t, vo.PriorityMedium, c.Classify(ctx, "Broken lookup"))
	assert.Equal(t, vo.PriorityMedium, c.Classify(ctx, "Stray animals"))
}

func TestPriorityClassifier_NoStrategies(t *testing.T) {
	assert.Equal(t, vo.PriorityMedium, NewPriorityClassifier().Classify(context.Background(), "fire"))
}
