// Package logutil holds helpers for keeping log lines short and free of secrets.
package logutil

// Truncate cuts s to maxLen bytes and marks the cut with "...".
// Upstream error bodies pass through here before they are logged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
