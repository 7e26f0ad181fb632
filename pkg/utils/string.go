package utils

import "strings"

// Truncate flattens s onto one line and cuts it to maxLen runes, marking the
// cut with "...". Used for log previews of pushed content.
func Truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
