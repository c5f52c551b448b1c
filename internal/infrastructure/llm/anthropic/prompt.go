package anthropic

import (
	"fmt"
	"strings"

	"github.com/kirillkom/lab-grader/internal/config"
	"github.com/kirillkom/lab-grader/internal/core/domain"
)

// systemPrompt sets the grader persona and the output format the scoring
// package parses back out. The scratchpad block keeps the model's arithmetic
// out of the student-facing feedback; it is stripped before reconciliation.
const systemPrompt = `You are an expert science lab-report grader.
Your goal is to grade student lab reports strictly according to the provided rubric.

Before assigning scores, perform a scientific deep dive:
1. Graph and figure auditing: check axis labels, units, trendlines and whether the data actually supports the stated conclusion.
2. Data and calculation checks: verify significant figures against equipment precision and re-verify one or two visible calculations.
3. Apply the rubric strictly; deduct for missing safety notes, qualitative observations, or citations.

Do all intermediate arithmetic inside a <scratchpad>...</scratchpad> block at the very start of your reply. The scratchpad is removed before anyone reads the response, so never put feedback in it.

After the scratchpad, use exactly this format:

SCORE: [points earned]/100
STUDENT: [name or filename]
---
[two to three sentence overall summary]

RUBRIC BREAKDOWN:
1. [SECTION NAME]: [score]/10 - [brief feedback]
(one numbered line per rubric section, in rubric order)

TOP 3 AREAS FOR IMPROVEMENT:
1. [actionable tip]
2. [actionable tip]
3. [actionable tip]`

func buildUserText(rubric config.Rubric, filename string, content domain.ExtractedContent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Please grade the lab report %q using the rubric below.\n\n", filename)
	b.WriteString("--- RUBRIC START ---\n")
	b.WriteString(strings.TrimSpace(rubric.Text))
	b.WriteString("\n--- RUBRIC END ---\n\nINSTRUCTIONS:\n")
	for i, instruction := range rubric.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, instruction)
	}

	if content.Inline() {
		b.WriteString("\nThe report text was extracted from a Word document and follows below. ")
		if len(content.Images) > 0 {
			fmt.Fprintf(&b, "Its %d embedded image(s) are attached after this message. ", len(content.Images))
		}
		b.WriteString("\n\n--- REPORT START ---\n")
		b.WriteString(content.Text)
		b.WriteString("\n--- REPORT END ---")
	} else {
		b.WriteString("\nThe report is attached as a single document or image.")
	}

	return b.String()
}
