package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:r><w:t>The rate of reaction doubles when H</w:t></w:r>
      <w:r><w:rPr><w:vertAlign w:val="subscript"/></w:rPr><w:t>2</w:t></w:r>
      <w:r><w:t>O</w:t></w:r>
      <w:r><w:rPr><w:vertAlign w:val="subscript"/></w:rPr><w:t>2</w:t></w:r>
      <w:r><w:t> concentration increases.</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>R</w:t></w:r>
      <w:r><w:rPr><w:vertAlign w:val="superscript"/></w:rPr><w:t>2</w:t></w:r>
      <w:r><w:t> = 0.98 for the trendline.</w:t></w:r>
    </w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Trial</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Time (s)</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>42.0</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func docxFixture(t *testing.T, documentXML string, media map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	add := func(name string, data []byte) {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := f.Write(data); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	add("[Content_Types].xml", []byte(`<Types/>`))
	add("word/document.xml", []byte(documentXML))
	for name, data := range media {
		add(name, data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestExtractWrapsSubAndSuperscriptRuns(t *testing.T) {
	data := docxFixture(t, documentXML, nil)
	content := New().Extract(context.Background(), domain.Submission{
		Filename: "report.docx",
		Kind:     domain.KindDocx,
		Data:     data,
	})

	if !content.Inline() {
		t.Fatalf("Extract() produced raw bytes for a word document")
	}
	if !strings.Contains(content.Text, "H[sub]2[/sub]O[sub]2[/sub]") {
		t.Errorf("subscript runs not wrapped:\n%s", content.Text)
	}
	if !strings.Contains(content.Text, "R[sup]2[/sup] = 0.98") {
		t.Errorf("superscript run not wrapped:\n%s", content.Text)
	}
}

func TestExtractTableRegionIsDistinguishable(t *testing.T) {
	data := docxFixture(t, documentXML, nil)
	content := New().Extract(context.Background(), domain.Submission{Filename: "r.docx", Kind: domain.KindDocx, Data: data})

	sentinelAt := strings.Index(content.Text, domain.TableSentinel)
	if sentinelAt < 0 {
		t.Fatalf("table sentinel missing:\n%s", content.Text)
	}

	body, tables := content.Text[:sentinelAt], content.Text[sentinelAt:]
	if strings.Contains(body, "Trial | Time (s)") {
		t.Errorf("table row leaked into the paragraph region")
	}
	if !strings.Contains(tables, "Trial | Time (s)") || !strings.Contains(tables, "1 | 42.0") {
		t.Errorf("table rows not rendered after sentinel:\n%s", tables)
	}
}

func TestExtractCollectsEmbeddedImagesInOrder(t *testing.T) {
	data := docxFixture(t, documentXML, map[string][]byte{
		"word/media/image2.png":  {0x89, 'P', 'N', 'G'},
		"word/media/image1.jpeg": {0xff, 0xd8},
		"word/media/notes.bin":   {0x00},
	})
	content := New().Extract(context.Background(), domain.Submission{Filename: "r.docx", Kind: domain.KindDocx, Data: data})

	if len(content.Images) != 2 {
		t.Fatalf("Extract() collected %d images, want 2", len(content.Images))
	}
	if content.Images[0].Name != "image1.jpeg" || content.Images[0].MediaType != "image/jpeg" {
		t.Errorf("images[0] = %+v", content.Images[0])
	}
	if content.Images[1].Name != "image2.png" || content.Images[1].MediaType != "image/png" {
		t.Errorf("images[1] = %+v", content.Images[1])
	}
}

func TestExtractShortTextGetsImageOnlyNote(t *testing.T) {
	const empty = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p><w:r><w:t>Title</w:t></w:r></w:p></w:body>
</w:document>`
	data := docxFixture(t, empty, nil)
	content := New().Extract(context.Background(), domain.Submission{Filename: "r.docx", Kind: domain.KindDocx, Data: data})

	if !strings.Contains(content.Text, "image-only") {
		t.Fatalf("short document missing system note:\n%s", content.Text)
	}
}

func TestExtractCorruptContainerDegrades(t *testing.T) {
	content := New().Extract(context.Background(), domain.Submission{
		Filename: "broken.docx",
		Kind:     domain.KindDocx,
		Data:     []byte("not a zip at all"),
	})
	if !strings.HasPrefix(content.Text, "Error reading document:") {
		t.Fatalf("Extract() = %q, want inline error placeholder", content.Text)
	}
	if len(content.Images) != 0 {
		t.Fatalf("degraded extraction returned images")
	}
}
