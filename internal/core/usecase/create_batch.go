package usecase

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/lab-grader/internal/core/domain"
	"github.com/kirillkom/lab-grader/internal/core/ports"
)

type CreateBatchUseCase struct {
	repo    ports.BatchRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewCreateBatchUseCase(
	repo ports.BatchRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *CreateBatchUseCase {
	return &CreateBatchUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Create normalizes an upload set into a queued batch: junk filtered,
// archives expanded, payloads saved to object storage, and the batch id
// published for the grading worker. Notices describe files that were
// skipped or could not be unpacked.
func (uc *CreateBatchUseCase) Create(
	ctx context.Context,
	name string,
	uploads []Upload,
) (*domain.Batch, []string, error) {
	subs, counts, notices := NormalizeUploads(uploads)
	if len(subs) == 0 {
		return nil, notices, domain.WrapError(domain.ErrInvalidInput, "create batch",
			fmt.Errorf("no gradable files in upload set"))
	}

	now := time.Now().UTC()
	batch := &domain.Batch{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Status:    domain.BatchQueued,
		Submitted: len(subs),
		Ignored:   counts.Ignored,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if batch.Name == "" {
		batch.Name = now.Format("2006-01-02 15:04")
	}

	if err := uc.repo.CreateBatch(ctx, batch); err != nil {
		return nil, notices, fmt.Errorf("create batch record: %w", err)
	}

	for i, sub := range subs {
		// Duplicate filenames are kept, so the key carries a position
		// prefix to stay unique within the batch.
		key := fmt.Sprintf("%s/%03d_%s", batch.ID, i, sanitizeFilename(sub.Filename))
		if err := uc.storage.Save(ctx, key, bytes.NewReader(sub.Data)); err != nil {
			return nil, notices, fmt.Errorf("save %s to object storage: %w", sub.Filename, err)
		}
		if err := uc.repo.AddSubmission(ctx, &domain.StoredSubmission{
			BatchID:    batch.ID,
			Filename:   sub.Filename,
			Kind:       sub.Kind,
			StorageKey: key,
		}); err != nil {
			return nil, notices, fmt.Errorf("record submission %s: %w", sub.Filename, err)
		}
	}

	if err := uc.queue.PublishBatchQueued(ctx, batch.ID); err != nil {
		return nil, notices, fmt.Errorf("publish batch queued event: %w", err)
	}

	return batch, notices, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "submission.bin"
	}
	return base
}
