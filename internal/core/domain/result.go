package domain

import "time"

type BatchStatus string

const (
	BatchQueued   BatchStatus = "queued"
	BatchGrading  BatchStatus = "grading"
	BatchComplete BatchStatus = "complete"
)

// Batch is one grading run over a normalized upload set.
type Batch struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Status    BatchStatus `json:"status"`
	Submitted int         `json:"submitted"`
	Graded    int         `json:"graded"`
	Ignored   int         `json:"ignored"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Result is the finalized record for one graded submission. Score is the
// reconciled total as "<total>/100", or "N/A" when the grading call degraded
// to an error string. Feedback is the full (scratchpad-stripped, reconciled)
// response text.
type Result struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id"`
	Filename  string    `json:"filename"`
	Score     string    `json:"score"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

// SectionScore is one rubric-category sub-score parsed out of the model's
// response text.
type SectionScore struct {
	Index int
	Name  string
	Value float64
	Body  string
}
