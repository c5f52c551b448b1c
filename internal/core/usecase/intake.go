package usecase

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

// Upload is one file handle as received from the HTTP surface, before
// normalization. ZIP containers are expanded by NormalizeUploads.
type Upload struct {
	Filename string
	Data     []byte
}

var junkNames = map[string]struct{}{
	".ds_store":   {},
	"desktop.ini": {},
	"thumbs.db":   {},
}

// isJunkPath reports whether a filename is OS metadata that should be
// dropped silently, both for direct uploads and ZIP members.
func isJunkPath(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "__macosx") {
		return true
	}
	base := path.Base(strings.ReplaceAll(lower, `\`, "/"))
	if _, ok := junkNames[base]; ok {
		return true
	}
	return strings.HasPrefix(base, "._")
}

// NormalizeUploads flattens a heterogeneous upload set into gradable
// submissions: ZIP containers are expanded, OS junk is dropped silently and
// files outside the allow-list count as ignored. A corrupt archive produces
// a notice and the rest of the set keeps processing. Pure transformation:
// duplicate filenames are kept (resume-by-filename dedupes later, in the
// grading loop).
func NormalizeUploads(uploads []Upload) ([]domain.Submission, domain.IntakeCounts, []string) {
	var (
		submissions []domain.Submission
		counts      domain.IntakeCounts
		notices     []string
	)

	for _, up := range uploads {
		if isJunkPath(up.Filename) {
			continue
		}

		if strings.EqualFold(filepath.Ext(up.Filename), ".zip") {
			members, err := expandArchive(up.Data)
			if err != nil {
				notices = append(notices, fmt.Sprintf("could not unpack %s: %v", up.Filename, err))
				continue
			}
			for _, sub := range members {
				submissions = append(submissions, sub)
				counts = tally(counts, sub.Kind)
			}
			continue
		}

		kind, ok := domain.KindForFilename(up.Filename)
		if !ok {
			counts.Ignored++
			continue
		}
		submissions = append(submissions, domain.Submission{
			Filename: up.Filename,
			Kind:     kind,
			Data:     up.Data,
		})
		counts = tally(counts, kind)
	}

	return submissions, counts, notices
}

// expandArchive turns allow-listed ZIP members into submissions named by
// their base filename. Directories, junk and unknown extensions are skipped.
func expandArchive(data []byte) ([]domain.Submission, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var members []domain.Submission
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || isJunkPath(entry.Name) {
			continue
		}
		kind, ok := domain.KindForFilename(entry.Name)
		if !ok {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open member %s: %w", entry.Name, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read member %s: %w", entry.Name, err)
		}

		members = append(members, domain.Submission{
			Filename: path.Base(strings.ReplaceAll(entry.Name, `\`, "/")),
			Kind:     kind,
			Data:     raw,
		})
	}
	return members, nil
}

func tally(counts domain.IntakeCounts, kind domain.MediaKind) domain.IntakeCounts {
	switch kind {
	case domain.KindPDF:
		counts.PDFs++
	case domain.KindImage:
		counts.Images++
	case domain.KindDocx:
		counts.Documents++
	}
	return counts
}
