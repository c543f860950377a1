package valueobjects

import (
	"fmt"
	"strings"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var prioritiesByLower = map[string]Priority{
	"high":   PriorityHigh,
	"medium": PriorityMedium,
	"low":    PriorityLow,
}

// NewPriority accepts any letter case and returns the canonical value.
func NewPriority(s string) (Priority, error) {
	p, ok := prioritiesByLower[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

func (p Priority) String() string {
	return string(p)
}

func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Severity is the lowercase form used by the realtime mirror.
func (p Priority) Severity() string {
	return strings.ToLower(string(p))
}

func (p Priority) IsHigh() bool {
	return p == PriorityHigh
}
