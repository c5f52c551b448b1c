package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

// DocBuilder assembles a WordprocessingML document from feedback texts.
// Markdown-style markers in the feedback (headings, bullets, ** emphasis)
// and the subscript/superscript sentinel tags become real formatting runs.
type DocBuilder struct {
	body strings.Builder
}

func NewDocBuilder() *DocBuilder {
	return &DocBuilder{}
}

// AddResult appends one submission's feedback: a heading carrying the
// filename and declared score, then the converted feedback body.
func (b *DocBuilder) AddResult(res domain.Result) {
	title := fmt.Sprintf("%s (%s)", res.Filename, res.Score)
	b.body.WriteString(headingParagraph(title, 1))
	for _, line := range strings.Split(res.Feedback, "\n") {
		b.body.WriteString(feedbackParagraph(line))
	}
}

// PageBreak starts the next result on a fresh page.
func (b *DocBuilder) PageBreak() {
	b.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

// WriteTo emits the complete docx container.
func (b *DocBuilder) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/numbering.xml", numberingXML},
		{"word/document.xml", documentHeaderXML + b.body.String() + documentFooterXML},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := io.WriteString(f, part.content); err != nil {
			return fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close container: %w", err)
	}
	return nil
}

// WriteResultDoc renders a single submission's feedback document.
func WriteResultDoc(w io.Writer, res domain.Result) error {
	b := NewDocBuilder()
	b.AddResult(res)
	return b.WriteTo(w)
}

// WriteBatchDoc renders every result into one document, page-broken
// between submissions.
func WriteBatchDoc(w io.Writer, results []domain.Result) error {
	b := NewDocBuilder()
	for i, res := range results {
		if i > 0 {
			b.PageBreak()
		}
		b.AddResult(res)
	}
	return b.WriteTo(w)
}

// FeedbackFilename derives the per-submission document name from the
// original upload name: "lab3.pdf" becomes "lab3_Feedback.docx".
func FeedbackFilename(original string) string {
	stem := original
	if dot := strings.LastIndex(original, "."); dot > 0 {
		stem = original[:dot]
	}
	return stem + "_Feedback.docx"
}

// feedbackParagraph converts one feedback line to a paragraph element.
func feedbackParagraph(line string) string {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return "<w:p/>"
	case strings.HasPrefix(trimmed, "### "):
		return headingParagraph(strings.TrimPrefix(trimmed, "### "), 3)
	case strings.HasPrefix(trimmed, "## "):
		return headingParagraph(strings.TrimPrefix(trimmed, "## "), 2)
	case strings.HasPrefix(trimmed, "# "):
		return headingParagraph(strings.TrimPrefix(trimmed, "# "), 1)
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "), strings.HasPrefix(trimmed, "+ "):
		return bulletParagraph(trimmed[2:])
	default:
		return "<w:p>" + runsXML(trimmed, runProps{}) + "</w:p>"
	}
}

var headingSizes = map[int]int{1: 32, 2: 28, 3: 26}

func headingParagraph(text string, level int) string {
	return "<w:p>" + runsXML(text, runProps{bold: true, size: headingSizes[level]}) + "</w:p>"
}

func bulletParagraph(text string) string {
	const props = `<w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>`
	return "<w:p>" + props + runsXML(text, runProps{}) + "</w:p>"
}

// runProps is the formatting state of one text run.
type runProps struct {
	bold bool
	size int
	vert string // "subscript", "superscript" or empty
}

func (p runProps) xml() string {
	var b strings.Builder
	if p.bold {
		b.WriteString("<w:b/>")
	}
	if p.size > 0 {
		fmt.Fprintf(&b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, p.size, p.size)
	}
	if p.vert != "" {
		fmt.Fprintf(&b, `<w:vertAlign w:val="%s"/>`, p.vert)
	}
	if b.Len() == 0 {
		return ""
	}
	return "<w:rPr>" + b.String() + "</w:rPr>"
}

// runsXML splits text into runs at every formatting-state change: "**"
// toggles bold, the sentinel tag pairs switch vertical alignment. The tags
// themselves never reach the output.
func runsXML(text string, base runProps) string {
	var out strings.Builder
	var runText strings.Builder
	props := base
	boldOn := false

	flush := func() {
		if runText.Len() == 0 {
			return
		}
		out.WriteString("<w:r>")
		out.WriteString(props.xml())
		out.WriteString(`<w:t xml:space="preserve">`)
		out.WriteString(escapeXML(runText.String()))
		out.WriteString("</w:t></w:r>")
		runText.Reset()
	}

	for i := 0; i < len(text); {
		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, "**"):
			flush()
			boldOn = !boldOn
			props.bold = base.bold || boldOn
			i += 2
		case strings.HasPrefix(rest, domain.SubscriptOpen):
			flush()
			props.vert = "subscript"
			i += len(domain.SubscriptOpen)
		case strings.HasPrefix(rest, domain.SubscriptClose):
			flush()
			props.vert = ""
			i += len(domain.SubscriptClose)
		case strings.HasPrefix(rest, domain.SuperscriptOpen):
			flush()
			props.vert = "superscript"
			i += len(domain.SuperscriptOpen)
		case strings.HasPrefix(rest, domain.SuperscriptClose):
			flush()
			props.vert = ""
			i += len(domain.SuperscriptClose)
		default:
			runText.WriteByte(text[i])
			i++
		}
	}
	flush()

	if out.Len() == 0 {
		out.WriteString(`<w:r><w:t xml:space="preserve"></w:t></w:r>`)
	}
	return out.String()
}

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
</Relationships>`

const numberingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:abstractNum w:abstractNumId="0">
<w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="&#8226;"/><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`

const documentHeaderXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentFooterXML = `<w:sectPr/></w:body></w:document>`
