package richtext

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Document is the structured form of a rich-text draft: an ordered list of
// paragraph blocks. It is deliberately minimal; the pipeline treats it as
// opaque and only converts it to and from transmissible markup.
type Document struct {
	paragraphs []string
}

// NewDocument builds a document from paragraph texts, dropping blank ones.
func NewDocument(paragraphs ...string) Document {
	cleaned := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return Document{paragraphs: cleaned}
}

// Empty reports whether the document has no content.
func (d Document) Empty() bool {
	return len(d.paragraphs) == 0
}

// Paragraphs returns a copy of the paragraph texts.
func (d Document) Paragraphs() []string {
	out := make([]string, len(d.paragraphs))
	copy(out, d.paragraphs)
	return out
}

// Text flattens the document to plain text, one line per paragraph.
func (d Document) Text() string {
	return strings.Join(d.paragraphs, "\n")
}

// HTMLCodec converts documents to and from HTML markup. Markup passing
// through the codec is sanitised with a user-generated-content policy, so
// scripts and event handlers never survive a round trip. Round-trips are
// semantically stable, not byte-identical.
type HTMLCodec struct {
	policy *bluemonday.Policy
	strip  *bluemonday.Policy
}

// NewHTMLCodec constructs the codec with its sanitisation policies.
func NewHTMLCodec() *HTMLCodec {
	return &HTMLCodec{
		policy: bluemonday.UGCPolicy(),
		strip:  bluemonday.StrictPolicy(),
	}
}

// Render converts the document to transmissible markup. An empty document
// renders to the empty string.
func (c *HTMLCodec) Render(doc Document) (string, error) {
	if doc.Empty() {
		return "", nil
	}
	var b strings.Builder
	for _, p := range doc.paragraphs {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>")
	}
	return c.policy.Sanitize(b.String()), nil
}

// Parse converts markup back into a document, splitting on paragraph and
// line-break boundaries and discarding all formatting beyond text content.
func (c *HTMLCodec) Parse(markup string) (Document, error) {
	sanitized := c.policy.Sanitize(markup)
	if strings.TrimSpace(sanitized) == "" {
		return Document{}, nil
	}

	replacer := strings.NewReplacer(
		"</p>", "\n",
		"</P>", "\n",
		"<br>", "\n",
		"<br/>", "\n",
		"<br />", "\n",
		"</li>", "\n",
		"</div>", "\n",
	)
	lines := strings.Split(replacer.Replace(sanitized), "\n")

	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		text := html.UnescapeString(c.strip.Sanitize(line))
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return Document{paragraphs: paragraphs}, nil
}
