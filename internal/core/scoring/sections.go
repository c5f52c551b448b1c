// Package scoring turns the model's semi-structured feedback text into
// authoritative numbers. The response format is prompt-engineered, not
// guaranteed, so every function here tolerates malformed input and never
// returns an error: zero matches is a valid outcome.
package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

// sectionRe matches one itemized sub-score line:
//
//	2. INTRODUCTION: 8/10
//	* **3. Hypothesis:** 9.5/10
//
// Leading bullets and bold markers are tolerated because models decorate
// the requested format inconsistently.
var sectionRe = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+][ \t]+)?\**(\d{1,2})\.[ \t]+([^:\n]+?):\**[ \t]*\**(\d+(?:\.\d+)?)\**[ \t]*/[ \t]*10\b`)

// ParseSections extracts every sub-score line in document order. The body of
// a section runs from the end of its score line to the start of the next
// section, or the end of the text. Duplicate indexes are kept as-is.
func ParseSections(text string) []domain.SectionScore {
	matches := sectionRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]domain.SectionScore, 0, len(matches))
	for i, m := range matches {
		idx, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(text[m[6]:m[7]], 64)
		if err != nil {
			continue
		}

		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}

		sections = append(sections, domain.SectionScore{
			Index: idx,
			Name:  cleanSectionName(text[m[4]:m[5]]),
			Value: value,
			Body:  strings.TrimSpace(text[m[1]:bodyEnd]),
		})
	}
	return sections
}

func cleanSectionName(raw string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "*_"))
}
