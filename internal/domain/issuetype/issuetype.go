// Package issuetype holds the reference taxonomy citizens pick an issue type from.
package issuetype

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
)

var ErrNotFound = errors.New("issue type not found")

type IssueType struct {
	ID       uint
	Name     string
	Active   bool
	Priority vo.Priority
}

func NewIssueType(name string, priority vo.Priority) (*IssueType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("issue type name is required")
	}
	if len(name) > 255 {
		return nil, fmt.Errorf("issue type name exceeds 255 characters")
	}
	if priority == "" {
		priority = vo.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority: %s", priority)
	}
	return &IssueType{Name: name, Active: true, Priority: priority}, nil
}

type Repository interface {
	// GetByName matches the exact name.
	GetByName(ctx context.Context, name string) (*IssueType, error)
	ListActive(ctx context.Context) ([]*IssueType, error)
	// Upsert inserts or updates by name.
	Upsert(ctx context.Context, it *IssueType) error
}
