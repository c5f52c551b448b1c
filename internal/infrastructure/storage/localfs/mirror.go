package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kirillkom/lab-grader/internal/core/domain"
	"github.com/kirillkom/lab-grader/internal/infrastructure/export"
)

// Mirror autosaves finalized results to disk as the worker produces them:
// one feedback document per submission plus a running gradebook, so an
// interrupted batch loses at most the in-flight submission.
type Mirror struct {
	basePath string
}

func NewMirror(basePath string) (*Mirror, error) {
	if basePath == "" {
		basePath = "./data/autosave"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create mirror dir: %w", err)
	}
	return &Mirror{basePath: basePath}, nil
}

func (m *Mirror) batchDir(batch *domain.Batch) (string, error) {
	dir := filepath.Join(m.basePath, batch.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create batch mirror dir: %w", err)
	}
	return dir, nil
}

func (m *Mirror) MirrorResult(_ context.Context, batch *domain.Batch, result domain.Result) error {
	dir, err := m.batchDir(batch)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, export.FeedbackFilename(result.Filename))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mirror document: %w", err)
	}
	defer f.Close()

	if err := export.WriteResultDoc(f, result); err != nil {
		return fmt.Errorf("mirror %s: %w", result.Filename, err)
	}
	return nil
}

// MirrorGradebook rewrites the running gradebook in place. The file is
// rewritten whole after every submission rather than appended, so a crash
// mid-write loses one snapshot, never corrupts column layout.
func (m *Mirror) MirrorGradebook(_ context.Context, batch *domain.Batch, results []domain.Result) error {
	dir, err := m.batchDir(batch)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "gradebook.csv")
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create gradebook: %w", err)
	}

	if err := export.WriteCSV(f, export.BuildTable(results)); err != nil {
		f.Close()
		return fmt.Errorf("write gradebook: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close gradebook: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("swap gradebook: %w", err)
	}
	return nil
}
