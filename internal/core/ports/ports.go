package ports

import (
	"context"
	"io"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

// BatchRepository persists batch, submission and result state.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch *domain.Batch) error
	GetBatch(ctx context.Context, id string) (*domain.Batch, error)
	UpdateBatchStatus(ctx context.Context, id string, status domain.BatchStatus, graded int) error

	AddSubmission(ctx context.Context, sub *domain.StoredSubmission) error
	ListSubmissions(ctx context.Context, batchID string) ([]domain.StoredSubmission, error)

	AppendResult(ctx context.Context, result *domain.Result) error
	ListResults(ctx context.Context, batchID string) ([]domain.Result, error)
	HasResult(ctx context.Context, batchID, filename string) (bool, error)
}

// ObjectStorage stores raw submission payloads between upload and grading.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue hands queued batches from the API to the grading worker.
type MessageQueue interface {
	PublishBatchQueued(ctx context.Context, batchID string) error
	SubscribeBatchQueued(ctx context.Context, handler func(context.Context, string) error) error
}

// ContentExtractor turns one submission into model-ready content. Extraction
// failures degrade to placeholder text inside the content, never to an
// error: a bad document must not abort a batch.
type ContentExtractor interface {
	Extract(ctx context.Context, sub domain.Submission) domain.ExtractedContent
}

// Grader sends one submission's content to the model and returns the raw
// feedback text. Exhausted retries and permanent API failures come back as
// a user-facing error string, which the rest of the pipeline treats as a
// valid (degenerate) response.
type Grader interface {
	Grade(ctx context.Context, filename string, content domain.ExtractedContent) string
}

// ResultMirror autosaves finalized results to disk as they are produced, so
// an interrupted batch loses at most the in-flight submission.
type ResultMirror interface {
	MirrorResult(ctx context.Context, batch *domain.Batch, result domain.Result) error
	MirrorGradebook(ctx context.Context, batch *domain.Batch, results []domain.Result) error
}
