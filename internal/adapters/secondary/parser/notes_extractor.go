package parser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// NotesExtractor pulls speaker notes out of HTML comment blocks.
//
// A comment whose body starts with "notes:" (any case, leading whitespace
// allowed) contributes the text after the marker; any other comment
// contributes its whole body. Extract is pure, so running it twice over the
// same nodes gives the same answer.
type NotesExtractor struct {
	marker *regexp.Regexp
}

// NewNotesExtractor creates a new notes extractor
func NewNotesExtractor() *NotesExtractor {
	return &NotesExtractor{
		marker: regexp.MustCompile(`(?is)^\s*notes:(.*)$`),
	}
}

// Extract returns the notes found among nodes and the nodes left visible.
// Notes from several comments are joined in document order with "\n".
// It returns nil notes when no comment matched, and a non-nil empty string
// when comments matched but carried no text.
func (e *NotesExtractor) Extract(nodes []ast.Node, source []byte) (*string, []ast.Node) {
	var (
		found bool
		parts []string
		rest  = make([]ast.Node, 0, len(nodes))
	)

	for _, n := range nodes {
		text, ok := e.NotesText(n, source)
		if !ok {
			rest = append(rest, n)
			continue
		}
		found = true
		if text != "" {
			parts = append(parts, text)
		}
	}

	if !found {
		return nil, rest
	}
	notes := strings.Join(parts, "\n")
	return &notes, rest
}

// NotesText returns the trimmed notes carried by n, and whether n is a
// comment block at all
func (e *NotesExtractor) NotesText(n ast.Node, source []byte) (string, bool) {
	if !isHTMLComment(n) {
		return "", false
	}

	body := commentBody(n.(*ast.HTMLBlock), source)
	if m := e.marker.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return strings.TrimSpace(body), true
}

// commentBody returns the text between "<!--" and "-->"
func commentBody(block *ast.HTMLBlock, source []byte) string {
	var raw bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		raw.Write(segment.Value(source))
	}
	if block.HasClosure() {
		raw.Write(block.ClosureLine.Value(source))
	}

	body := strings.TrimSpace(raw.String())
	body = strings.TrimPrefix(body, "<!--")
	if end := strings.Index(body, "-->"); end >= 0 {
		body = body[:end]
	}
	return body
}
