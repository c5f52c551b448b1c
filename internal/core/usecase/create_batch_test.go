package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

type batchRepoFake struct {
	batch       *domain.Batch
	submissions []domain.StoredSubmission
	results     []domain.Result
	statuses    []domain.BatchStatus
	createErr   error
	appendErr   error
}

func (f *batchRepoFake) CreateBatch(_ context.Context, batch *domain.Batch) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyBatch := *batch
	f.batch = &copyBatch
	return nil
}

func (f *batchRepoFake) GetBatch(_ context.Context, id string) (*domain.Batch, error) {
	if f.batch == nil || f.batch.ID != id {
		return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", errors.New(id))
	}
	copyBatch := *f.batch
	return &copyBatch, nil
}

func (f *batchRepoFake) UpdateBatchStatus(_ context.Context, id string, status domain.BatchStatus, graded int) error {
	if f.batch == nil || f.batch.ID != id {
		return domain.WrapError(domain.ErrBatchNotFound, "update batch status", errors.New(id))
	}
	f.batch.Status = status
	f.batch.Graded = graded
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *batchRepoFake) AddSubmission(_ context.Context, sub *domain.StoredSubmission) error {
	f.submissions = append(f.submissions, *sub)
	return nil
}

func (f *batchRepoFake) ListSubmissions(_ context.Context, batchID string) ([]domain.StoredSubmission, error) {
	var subs []domain.StoredSubmission
	for _, sub := range f.submissions {
		if sub.BatchID == batchID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (f *batchRepoFake) AppendResult(_ context.Context, result *domain.Result) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.results = append(f.results, *result)
	return nil
}

func (f *batchRepoFake) ListResults(_ context.Context, batchID string) ([]domain.Result, error) {
	var results []domain.Result
	for _, res := range f.results {
		if res.BatchID == batchID {
			results = append(results, res)
		}
	}
	return results, nil
}

func (f *batchRepoFake) HasResult(_ context.Context, batchID, filename string) (bool, error) {
	for _, res := range f.results {
		if res.BatchID == batchID && res.Filename == filename {
			return true, nil
		}
	}
	return false, nil
}

type storageFake struct {
	saved map[string][]byte
	err   error
}

func newStorageFake() *storageFake {
	return &storageFake{saved: make(map[string][]byte)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.saved[key]
	if !ok {
		return nil, errors.New("no such key: " + key)
	}
	return io.NopCloser(strings.NewReader(string(raw))), nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishBatchQueued(_ context.Context, batchID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, batchID)
	return nil
}

func (f *queueFake) SubscribeBatchQueued(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestCreateBatchSuccess(t *testing.T) {
	repo := &batchRepoFake{}
	storage := newStorageFake()
	queue := &queueFake{}
	uc := NewCreateBatchUseCase(repo, storage, queue)

	batch, notices, err := uc.Create(context.Background(), "period 3", []Upload{
		{Filename: "lab3.pdf", Data: []byte("%PDF-1.4")},
		{Filename: "notes.txt", Data: []byte("not gradable")},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if batch.ID == "" {
		t.Fatalf("expected batch id")
	}
	if batch.Status != domain.BatchQueued {
		t.Fatalf("batch status = %q, want queued", batch.Status)
	}
	if batch.Submitted != 1 || batch.Ignored != 1 {
		t.Fatalf("counts = submitted %d, ignored %d, want 1 and 1", batch.Submitted, batch.Ignored)
	}
	if len(notices) != 0 {
		t.Fatalf("notices = %v, want none for a clean upload set", notices)
	}
	if len(repo.submissions) != 1 || repo.submissions[0].Filename != "lab3.pdf" {
		t.Fatalf("recorded submissions = %v", repo.submissions)
	}
	if len(storage.saved) != 1 {
		t.Fatalf("storage holds %d blobs, want 1", len(storage.saved))
	}
	if len(queue.published) != 1 || queue.published[0] != batch.ID {
		t.Fatalf("published = %v, want the batch id", queue.published)
	}
}

func TestCreateBatchRejectsEmptyUploadSet(t *testing.T) {
	uc := NewCreateBatchUseCase(&batchRepoFake{}, newStorageFake(), &queueFake{})

	_, _, err := uc.Create(context.Background(), "empty", []Upload{
		{Filename: ".DS_Store", Data: []byte{}},
	})
	if err == nil {
		t.Fatalf("expected error for upload set with no gradable files")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateBatchDuplicateFilenamesGetDistinctKeys(t *testing.T) {
	repo := &batchRepoFake{}
	storage := newStorageFake()
	uc := NewCreateBatchUseCase(repo, storage, &queueFake{})

	_, _, err := uc.Create(context.Background(), "dupes", []Upload{
		{Filename: "lab3.pdf", Data: []byte("first")},
		{Filename: "lab3.pdf", Data: []byte("second")},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(repo.submissions) != 2 {
		t.Fatalf("recorded %d submissions, want duplicates kept", len(repo.submissions))
	}
	if repo.submissions[0].StorageKey == repo.submissions[1].StorageKey {
		t.Fatalf("duplicate filenames share storage key %q", repo.submissions[0].StorageKey)
	}
	if len(storage.saved) != 2 {
		t.Fatalf("storage holds %d blobs, want 2", len(storage.saved))
	}
}
