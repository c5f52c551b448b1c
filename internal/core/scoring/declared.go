package scoring

import (
	"regexp"
	"strings"
)

var declaredRe = regexp.MustCompile(`(?m)^.*SCORE:\s*(.+?)\s*$`)

// DeclaredScore pulls the declared total (e.g. "27.5/100") out of a feedback
// text for display and export. Returns "N/A" when no header is present, which
// is how degraded error-string responses surface in the gradebook.
func DeclaredScore(text string) string {
	m := declaredRe.FindStringSubmatch(text)
	if m == nil {
		return "N/A"
	}
	return strings.TrimSpace(m[1])
}

// summaryBoundaryRe marks where the leading overall-summary block ends: the
// first itemized section or the rubric breakdown header, whichever comes first.
var summaryBoundaryRe = regexp.MustCompile(`(?im)^[ \t]*(?:[-*+][ \t]+)?\**(?:\d{1,2}\.[ \t]|RUBRIC BREAKDOWN)`)

// OverallSummary extracts the free-text block between the response header
// lines and the first itemized section. Header bookkeeping lines (SCORE,
// STUDENT, separators) are dropped.
func OverallSummary(text string) string {
	body := text
	if loc := summaryBoundaryRe.FindStringIndex(text); loc != nil {
		body = text[:loc[0]]
	}

	var kept []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "---"):
			continue
		case strings.Contains(trimmed, "SCORE:") || strings.Contains(trimmed, "STUDENT:"):
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, " ")
}
