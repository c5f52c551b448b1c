package scoring

import (
	"math"
	"regexp"
	"strconv"
)

// totalRe matches the declared-total header the prompt asks for,
// e.g. "SCORE: 87/100". Only its numeric value gets rewritten.
var totalRe = regexp.MustCompile(`(SCORE:\s*)(\d+(?:\.\d+)?)(\s*/\s*100)`)

// Reconcile recomputes the authoritative total from the itemized sub-scores
// and rewrites the first declared-total header to match. The model's own
// arithmetic is never trusted; its prose is never touched. When the text
// contains no parseable sub-scores it is returned byte-for-byte unchanged.
func Reconcile(text string) (string, bool) {
	sections := ParseSections(text)
	if len(sections) == 0 {
		return text, false
	}

	sum := 0.0
	for _, s := range sections {
		sum += s.Value
	}

	loc := totalRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}

	// Splice the recomputed value over the old one, first occurrence only.
	return text[:loc[4]] + FormatTotal(sum) + text[loc[5]:], true
}

// FormatTotal renders a summed total: whole numbers without a decimal point,
// fractional ones rounded half-up to one decimal place.
func FormatTotal(sum float64) string {
	rounded := math.Round(sum*10) / 10
	if rounded == math.Trunc(rounded) {
		return strconv.Itoa(int(rounded))
	}
	return strconv.FormatFloat(rounded, 'f', 1, 64)
}
