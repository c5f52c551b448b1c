// Package export renders finalized grading results as spreadsheets and
// rich-text documents. Everything here is derived from the stored feedback
// text; a result whose feedback matches no known pattern still produces a
// row or a document, never an error.
package export

import (
	"strings"

	"github.com/kirillkom/lab-grader/internal/core/domain"
	"github.com/kirillkom/lab-grader/internal/core/scoring"
)

// Table is the flattened gradebook: one row per submission, one Score and
// Feedback column pair per rubric section discovered across the batch.
type Table struct {
	Header []string
	Rows   [][]string
}

// BuildTable flattens results into tabular form. Section columns appear in
// the order their sections are first seen across the batch, with each
// section's Score column immediately before its Feedback column. A result
// with unparseable feedback fills only the three base columns.
func BuildTable(results []domain.Result) Table {
	type column struct {
		name string
	}
	var order []column
	seen := make(map[string]int)

	parsed := make([][]domain.SectionScore, len(results))
	for i, res := range results {
		sections := scoring.ParseSections(res.Feedback)
		parsed[i] = sections
		for _, sec := range sections {
			if _, ok := seen[sec.Name]; !ok {
				seen[sec.Name] = len(order)
				order = append(order, column{name: sec.Name})
			}
		}
	}

	header := []string{"Filename", "Overall Score", "Overall Summary"}
	for _, col := range order {
		header = append(header, col.name+" Score", col.name+" Feedback")
	}

	rows := make([][]string, 0, len(results))
	for i, res := range results {
		row := make([]string, len(header))
		row[0] = res.Filename
		row[1] = res.Score
		row[2] = CollapseCell(scoring.OverallSummary(res.Feedback))

		for _, sec := range parsed[i] {
			base := 3 + seen[sec.Name]*2
			if row[base] != "" {
				// Duplicate section names keep the first occurrence.
				continue
			}
			row[base] = scoring.FormatTotal(sec.Value)
			row[base+1] = CollapseCell(sec.Body)
		}
		rows = append(rows, row)
	}

	return Table{Header: header, Rows: rows}
}

// CollapseCell flattens a free-text block to a single line. Spreadsheet
// formats do not tolerate embedded newlines reliably.
func CollapseCell(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
