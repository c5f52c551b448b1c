package passthrough

import (
	"bytes"
	"context"
	"testing"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

func TestExtractMediaTypes(t *testing.T) {
	tests := []struct {
		filename string
		kind     domain.MediaKind
		want     string
	}{
		{"report.pdf", domain.KindPDF, "application/pdf"},
		{"scan.PNG", domain.KindImage, "image/png"},
		{"photo.jpg", domain.KindImage, "image/jpeg"},
		{"photo.jpeg", domain.KindImage, "image/jpeg"},
		{"anim.gif", domain.KindImage, "image/gif"},
		{"shot.webp", domain.KindImage, "image/webp"},
		{"mystery.raw", domain.KindImage, "image/jpeg"},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			payload := []byte("payload-" + tt.filename)
			content := e.Extract(context.Background(), domain.Submission{
				Filename: tt.filename,
				Kind:     tt.kind,
				Data:     payload,
			})
			if content.MediaType != tt.want {
				t.Errorf("MediaType = %q, want %q", content.MediaType, tt.want)
			}
			if !bytes.Equal(content.RawBytes, payload) {
				t.Errorf("RawBytes modified in passthrough")
			}
			if content.Inline() {
				t.Errorf("passthrough content claimed to be inline text")
			}
		})
	}
}

func TestExtractBrokenPDFStillPassesThrough(t *testing.T) {
	payload := []byte("%PDF-1.7 truncated garbage")
	content := New().Extract(context.Background(), domain.Submission{
		Filename: "broken.pdf",
		Kind:     domain.KindPDF,
		Data:     payload,
	})
	if !bytes.Equal(content.RawBytes, payload) {
		t.Fatalf("broken PDF was not passed through unmodified")
	}
}
