package expr

import (
	"regexp"
	"strings"
)

var candidatePattern = regexp.MustCompile(`[\d\s+\-*/().^]+`)

// Extract returns the leftmost run of arithmetic-looking characters in text,
// with ^ rewritten as **. Only the first run is considered; it is rejected
// when it carries no digit.
func Extract(text string) (string, bool) {
	run := candidatePattern.FindString(text)
	candidate := strings.TrimSpace(run)
	candidate = strings.ReplaceAll(candidate, "^", "**")
	if candidate == "" || !strings.ContainsAny(candidate, "0123456789") {
		return "", false
	}
	return candidate, true
}
