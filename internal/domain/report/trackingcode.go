package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var trackingCodePattern = regexp.MustCompile(`^([A-Z][A-Z0-9]*)-(\d{8})-(\d{3,})$`)

// TrackingCode is the public identifier PFX-YYYYMMDD-NNN. NNN is at least
// three digits and widens past 999 rather than wrapping.
type TrackingCode struct {
	prefix   string
	day      string
	sequence int
}

// NewTrackingCode builds a code from its parts. day is YYYYMMDD.
func NewTrackingCode(prefix, day string, sequence int) (TrackingCode, error) {
	if sequence < 1 {
		return TrackingCode{}, fmt.Errorf("tracking code sequence must be positive, got %d", sequence)
	}
	code := TrackingCode{prefix: prefix, day: day, sequence: sequence}
	if !trackingCodePattern.MatchString(code.String()) {
		return TrackingCode{}, fmt.Errorf("invalid tracking code parts %q %q", prefix, day)
	}
	return code, nil
}

// ParseTrackingCode parses the exact textual form. A sequence with a
// redundant leading zero beyond three digits is rejected so that parsing and
// formatting round-trip.
func ParseTrackingCode(s string) (TrackingCode, error) {
	m := trackingCodePattern.FindStringSubmatch(s)
	if m == nil {
		return TrackingCode{}, fmt.Errorf("invalid tracking code: %q", s)
	}
	digits := m[3]
	if len(digits) > 3 && digits[0] == '0' {
		return TrackingCode{}, fmt.Errorf("invalid tracking code: %q", s)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq < 1 {
		return TrackingCode{}, fmt.Errorf("invalid tracking code: %q", s)
	}
	return TrackingCode{prefix: m[1], day: m[2], sequence: seq}, nil
}

// NormalizeTrackingCode applies the lookup normalization used by the public
// tracking page: surrounding whitespace removed and letters upper-cased.
func NormalizeTrackingCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DayPrefix is the shared prefix of every code issued on day: "CW-20250611-".
func DayPrefix(prefix, day string) string {
	return prefix + "-" + day + "-"
}

func (c TrackingCode) String() string {
	return fmt.Sprintf("%s-%s-%03d", c.prefix, c.day, c.sequence)
}

func (c TrackingCode) Prefix() string { return c.prefix }

func (c TrackingCode) Day() string { return c.day }

func (c TrackingCode) Sequence() int { return c.sequence }
