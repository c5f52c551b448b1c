// Package passthrough hands PDF and image submissions to the model as
// opaque binary attachments. No content transformation happens here; the
// model reads the document itself.
package passthrough

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract returns the submission bytes unmodified, tagged with the media
// type inferred from the filename. PDF containers are opened once to log an
// advisory page count; a PDF that fails to open still passes through, since
// the model may cope with more than the parser does.
func (e *Extractor) Extract(_ context.Context, sub domain.Submission) domain.ExtractedContent {
	if sub.Kind == domain.KindPDF {
		if pages, err := pageCount(sub.Data); err != nil {
			slog.Warn("pdf_container_unreadable", "filename", sub.Filename, "error", err)
		} else {
			slog.Debug("pdf_accepted", "filename", sub.Filename, "pages", pages)
		}
	}

	return domain.ExtractedContent{
		RawBytes:  sub.Data,
		MediaType: domain.MediaTypeForFilename(sub.Filename),
	}
}

func pageCount(data []byte) (pages int, err error) {
	// The pdf parser panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
