package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

func documentXMLFrom(t *testing.T, container []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(container), int64(len(container)))
	if err != nil {
		t.Fatalf("open container: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(data)
	}
	t.Fatalf("container has no word/document.xml")
	return ""
}

func TestWriteResultDocConvertsSentinelTagsToVertAlignRuns(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResultDoc(&buf, domain.Result{
		Filename: "lab3.docx",
		Score:    "90/100",
		Feedback: "The H[sub]2[/sub]O[sub]2[/sub] decomposition and R[sup]2[/sup] fit are discussed.",
	})
	if err != nil {
		t.Fatalf("WriteResultDoc() error = %v", err)
	}

	doc := documentXMLFrom(t, buf.Bytes())
	if !strings.Contains(doc, `<w:vertAlign w:val="subscript"/>`) {
		t.Errorf("document has no subscript run")
	}
	if !strings.Contains(doc, `<w:vertAlign w:val="superscript"/>`) {
		t.Errorf("document has no superscript run")
	}
	for _, tag := range []string{"[sub]", "[/sub]", "[sup]", "[/sup]"} {
		if strings.Contains(doc, tag) {
			t.Errorf("literal tag %q leaked into document text", tag)
		}
	}
}

func TestWriteResultDocConvertsMarkdownMarkers(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResultDoc(&buf, domain.Result{
		Filename: "lab3.pdf",
		Score:    "70/100",
		Feedback: "## Strengths\n- Clear **hypothesis** statement\nBody text follows.",
	})
	if err != nil {
		t.Fatalf("WriteResultDoc() error = %v", err)
	}

	doc := documentXMLFrom(t, buf.Bytes())
	if !strings.Contains(doc, `<w:sz w:val="28"/>`) {
		t.Errorf("level-2 heading run not found")
	}
	if !strings.Contains(doc, `<w:numId w:val="1"/>`) {
		t.Errorf("bullet paragraph not found")
	}
	if !strings.Contains(doc, `<w:rPr><w:b/></w:rPr><w:t xml:space="preserve">hypothesis</w:t>`) {
		t.Errorf("bold run not found for ** emphasis")
	}
	if strings.Contains(doc, "**") {
		t.Errorf("literal emphasis markers leaked into document")
	}
}

func TestWriteBatchDocPageBreaksBetweenResults(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBatchDoc(&buf, []domain.Result{
		{Filename: "a.pdf", Score: "80/100", Feedback: "Good."},
		{Filename: "b.pdf", Score: "60/100", Feedback: "Fair."},
		{Filename: "c.pdf", Score: "90/100", Feedback: "Great."},
	})
	if err != nil {
		t.Fatalf("WriteBatchDoc() error = %v", err)
	}

	doc := documentXMLFrom(t, buf.Bytes())
	if got := strings.Count(doc, `<w:br w:type="page"/>`); got != 2 {
		t.Fatalf("document has %d page breaks, want 2 for 3 results", got)
	}
}

func TestWriteResultDocEscapesXMLMetacharacters(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResultDoc(&buf, domain.Result{
		Filename: "lab3.pdf",
		Score:    "50/100",
		Feedback: "Yield < 50% & rising, see <notes>.",
	})
	if err != nil {
		t.Fatalf("WriteResultDoc() error = %v", err)
	}

	doc := documentXMLFrom(t, buf.Bytes())
	if !strings.Contains(doc, "Yield &lt; 50% &amp; rising, see &lt;notes&gt;.") {
		t.Fatalf("metacharacters not escaped in document text")
	}
}

func TestFeedbackFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"lab3.pdf", "lab3_Feedback.docx"},
		{"report.final.docx", "report.final_Feedback.docx"},
		{"noext", "noext_Feedback.docx"},
	}
	for _, tt := range tests {
		if got := FeedbackFilename(tt.in); got != tt.want {
			t.Errorf("FeedbackFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteBundleNamesEntriesAfterUploadStems(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBundle(&buf, []domain.Result{
		{Filename: "alice.pdf", Score: "80/100", Feedback: "Good."},
		{Filename: "bob.docx", Score: "70/100", Feedback: "Solid."},
	})
	if err != nil {
		t.Fatalf("WriteBundle() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{"alice_Feedback.docx", "bob_Feedback.docx"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("bundle entries = %v, want %v", names, want)
	}
}
