package domain

import (
	"path/filepath"
	"strings"
)

// MediaKind is the coarse submission type the grading pipeline switches on.
type MediaKind string

const (
	KindPDF   MediaKind = "pdf"
	KindImage MediaKind = "image"
	KindDocx  MediaKind = "word-document"
)

// Submission is one gradable student file, either uploaded directly or
// extracted from a ZIP archive. Immutable after intake.
type Submission struct {
	Filename string
	Kind     MediaKind
	Data     []byte
}

// StoredSubmission is the persisted record of a normalized submission whose
// payload lives in object storage until the worker grades it.
type StoredSubmission struct {
	BatchID    string
	Filename   string
	Kind       MediaKind
	StorageKey string
}

// IntakeCounts summarizes what the intake normalizer did with an upload set.
type IntakeCounts struct {
	PDFs      int
	Images    int
	Documents int
	Ignored   int
}

func (c IntakeCounts) Total() int {
	return c.PDFs + c.Images + c.Documents
}

// ExtractedContent is the model-ready representation of one submission.
// Word documents carry marked-up text plus embedded images; PDFs and images
// pass through as raw bytes tagged with a media type.
type ExtractedContent struct {
	Text      string
	Images    []ImageBlob
	RawBytes  []byte
	MediaType string
}

// Inline is true when the content is extracted text (plus images) rather
// than an opaque binary attachment.
func (c ExtractedContent) Inline() bool {
	return len(c.RawBytes) == 0
}

// ImageBlob is one raster image embedded in a word document, in document order.
type ImageBlob struct {
	Name      string
	MediaType string
	Data      []byte
}

var extensionKinds = map[string]MediaKind{
	".pdf":  KindPDF,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".webp": KindImage,
	".docx": KindDocx,
}

// KindForFilename infers the media kind from the file extension.
// The second return is false for extensions outside the allow-list.
func KindForFilename(name string) (MediaKind, bool) {
	kind, ok := extensionKinds[strings.ToLower(filepath.Ext(name))]
	return kind, ok
}

var mediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// MediaTypeForFilename maps a file extension to its MIME type. Unrecognized
// extensions default to image/jpeg, matching the upload allow-list bias.
func MediaTypeForFilename(name string) string {
	if mt, ok := mediaTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "image/jpeg"
}
