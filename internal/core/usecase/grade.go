package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kirillkom/lab-grader/internal/core/domain"
	"github.com/kirillkom/lab-grader/internal/core/ports"
	"github.com/kirillkom/lab-grader/internal/core/scoring"
)

// GradeBatchUseCase runs the grading loop for one queued batch.
// Submissions are graded strictly one at a time; a rate limiter enforces a
// polite delay between model calls instead of coordinated concurrency.
type GradeBatchUseCase struct {
	repo        ports.BatchRepository
	storage     ports.ObjectStorage
	docx        ports.ContentExtractor
	passthrough ports.ContentExtractor
	grader      ports.Grader
	mirror      ports.ResultMirror
	limiter     *rate.Limiter
	logger      *slog.Logger
}

func NewGradeBatchUseCase(
	repo ports.BatchRepository,
	storage ports.ObjectStorage,
	docx ports.ContentExtractor,
	passthrough ports.ContentExtractor,
	grader ports.Grader,
	mirror ports.ResultMirror,
	interRequestDelay time.Duration,
	logger *slog.Logger,
) *GradeBatchUseCase {
	if interRequestDelay <= 0 {
		interRequestDelay = 1500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GradeBatchUseCase{
		repo:        repo,
		storage:     storage,
		docx:        docx,
		passthrough: passthrough,
		grader:      grader,
		mirror:      mirror,
		limiter:     rate.NewLimiter(rate.Every(interRequestDelay), 1),
		logger:      logger,
	}
}

// GradeByID grades every ungraded submission in the batch. Submissions
// that already have a result under the same filename are skipped, which is
// how an interrupted batch resumes. Every per-submission failure degrades
// into the result record; only batch-level infrastructure failures return
// an error.
func (uc *GradeBatchUseCase) GradeByID(ctx context.Context, batchID string) error {
	batch, err := uc.repo.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("load batch: %w", err)
	}

	if err := uc.repo.UpdateBatchStatus(ctx, batchID, domain.BatchGrading, batch.Graded); err != nil {
		return fmt.Errorf("set status=grading: %w", err)
	}

	subs, err := uc.repo.ListSubmissions(ctx, batchID)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}

	// Prior results seed the running gradebook when resuming.
	results, err := uc.repo.ListResults(ctx, batchID)
	if err != nil {
		return fmt.Errorf("list prior results: %w", err)
	}
	graded := len(results)

	for _, sub := range subs {
		seen, err := uc.repo.HasResult(ctx, batchID, sub.Filename)
		if err != nil {
			return fmt.Errorf("check prior result for %s: %w", sub.Filename, err)
		}
		if seen {
			uc.logger.Info("submission_skipped", "batch_id", batchID, "filename", sub.Filename)
			continue
		}

		if err := uc.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("inter-request delay: %w", err)
		}

		result := uc.gradeOne(ctx, batch, sub)
		if err := uc.repo.AppendResult(ctx, &result); err != nil {
			uc.logger.Error("result_persist_failed",
				"batch_id", batchID, "filename", sub.Filename, "error", err)
			continue
		}
		results = append(results, result)
		graded++

		// Mirror immediately so a crash loses at most the in-flight
		// submission. Mirror failures are logged, never fatal.
		if err := uc.mirror.MirrorResult(ctx, batch, result); err != nil {
			uc.logger.Error("mirror_result_failed",
				"batch_id", batchID, "filename", sub.Filename, "error", err)
		}
		if err := uc.mirror.MirrorGradebook(ctx, batch, results); err != nil {
			uc.logger.Error("mirror_gradebook_failed", "batch_id", batchID, "error", err)
		}
		if err := uc.repo.UpdateBatchStatus(ctx, batchID, domain.BatchGrading, graded); err != nil {
			uc.logger.Error("progress_update_failed", "batch_id", batchID, "error", err)
		}

		uc.logger.Info("submission_graded",
			"batch_id", batchID, "filename", sub.Filename, "score", result.Score)
	}

	if err := uc.repo.UpdateBatchStatus(ctx, batchID, domain.BatchComplete, graded); err != nil {
		return fmt.Errorf("set status=complete: %w", err)
	}
	return nil
}

// gradeOne produces the finalized result for a single submission. It never
// fails: storage and extraction problems degrade into the feedback text.
func (uc *GradeBatchUseCase) gradeOne(
	ctx context.Context,
	batch *domain.Batch,
	stored domain.StoredSubmission,
) domain.Result {
	feedback := uc.feedbackFor(ctx, stored)

	feedback = scoring.StripScratchpad(feedback)
	feedback, _ = scoring.Reconcile(feedback)

	return domain.Result{
		ID:        uuid.NewString(),
		BatchID:   batch.ID,
		Filename:  stored.Filename,
		Score:     scoring.DeclaredScore(feedback),
		Feedback:  feedback,
		CreatedAt: time.Now().UTC(),
	}
}

func (uc *GradeBatchUseCase) feedbackFor(ctx context.Context, stored domain.StoredSubmission) string {
	rc, err := uc.storage.Open(ctx, stored.StorageKey)
	if err != nil {
		return fmt.Sprintf("⚠️ Error: could not load %s from storage: %v", stored.Filename, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Sprintf("⚠️ Error: could not read %s from storage: %v", stored.Filename, err)
	}

	sub := domain.Submission{
		Filename: stored.Filename,
		Kind:     stored.Kind,
		Data:     data,
	}

	var content domain.ExtractedContent
	if stored.Kind == domain.KindDocx {
		content = uc.docx.Extract(ctx, sub)
	} else {
		content = uc.passthrough.Extract(ctx, sub)
	}

	return uc.grader.Grade(ctx, stored.Filename, content)
}
