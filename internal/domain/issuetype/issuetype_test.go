package issuetype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
)

func TestNewIssueType(t *testing.T) {
	it, err := NewIssueType("  Potholes ", "")
	require.NoError(t, err)
	assert.Equal(t, "Potholes", it.Name)
	assert.True(t, it.Active)
	assert.Equal(t, vo.PriorityMedium, it.Priority)

	_, err = NewIssueType("", vo.PriorityHigh)
	assert.Error(t, err)
	_, err = NewIssueType(strings.Repeat("x", 256), vo.PriorityHigh)
	assert.Error(t, err)
	_, err = NewIssueType("Fire", "critical")
	assert.Error(t, err)
}
