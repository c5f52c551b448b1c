package scoring

import (
	"regexp"
	"strings"
)

// The prompt directs the model to do its arithmetic inside a delimited
// scratchpad block. That region is private reasoning and must never reach
// reconciliation, exports, or the operator.
var scratchpadRe = regexp.MustCompile(`(?is)<scratchpad>.*?</scratchpad>`)

// StripScratchpad removes every scratchpad block from the response text.
// Text without a complete block is returned unchanged, even when an opening
// tag appears without a closing one.
func StripScratchpad(text string) string {
	if !strings.Contains(strings.ToLower(text), "<scratchpad>") {
		return text
	}
	stripped := scratchpadRe.ReplaceAllString(text, "")
	if stripped == text {
		return text
	}
	return strings.TrimLeft(stripped, "\n")
}
