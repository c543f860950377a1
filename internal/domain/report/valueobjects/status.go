package valueobjects

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
	StatusDuplicate  Status = "duplicate"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusResolved:   true,
	StatusRejected:   true,
	StatusDuplicate:  true,
}

// Forward moves only. Reverts are a separate, explicit mapping.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusRejected, StatusDuplicate},
	StatusInProgress: {StatusResolved, StatusDuplicate},
}

var revertTargets = map[Status]Status{
	StatusInProgress: StatusPending,
	StatusResolved:   StatusInProgress,
	StatusRejected:   StatusPending,
	StatusDuplicate:  StatusPending,
}

// AllStatuses lists statuses in workflow order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusResolved, StatusRejected, StatusDuplicate}
}

func NewStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid report status: %s", s)
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RevertTarget returns the state a staff revert moves s back to.
// Pending has no revert target.
func (s Status) RevertTarget() (Status, bool) {
	t, ok := revertTargets[s]
	return t, ok
}

// IsMergeable reports whether a report in this state may be folded into another.
func (s Status) IsMergeable() bool {
	return s == StatusPending || s == StatusInProgress
}

func (s Status) IsDuplicate() bool {
	return s == StatusDuplicate
}

// Label is the display form: "in_progress" -> "In Progress".
func (s Status) Label() string {
	// A Caser keeps state, so one is built per call.
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}
