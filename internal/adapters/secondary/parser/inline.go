package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// inlineFlattener turns an inline subtree into plain text plus style spans.
// Offsets are counted in runes of the produced text.
type inlineFlattener struct {
	source []byte
	buf    strings.Builder
	runes  int
	spans  []entities.StyleSpan
}

// flattenInline flattens the children of n
func flattenInline(n ast.Node, source []byte) (string, []entities.StyleSpan) {
	f := &inlineFlattener{source: source}
	f.children(n)
	return f.buf.String(), f.spans
}

// plainText flattens the children of n and drops the styling
func plainText(n ast.Node, source []byte) string {
	text, _ := flattenInline(n, source)
	return text
}

func (f *inlineFlattener) write(s string) {
	f.buf.WriteString(s)
	f.runes += utf8.RuneCountInString(s)
}

func (f *inlineFlattener) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		f.node(c)
	}
}

// styled flattens n's children and records one span covering them
func (f *inlineFlattener) styled(n ast.Node, span entities.StyleSpan) {
	start := f.runes
	idx := len(f.spans)
	f.spans = append(f.spans, span)
	f.children(n)

	if f.runes == start {
		f.spans = append(f.spans[:idx], f.spans[idx+1:]...)
		return
	}
	f.spans[idx].Start = start
	f.spans[idx].End = f.runes
}

func (f *inlineFlattener) node(n ast.Node) {
	switch node := n.(type) {
	case *ast.Text:
		value := node.Segment.Value(f.source)
		if !node.IsRaw() {
			value = unescape(value)
		}
		f.write(string(value))
		switch {
		case node.HardLineBreak():
			f.write("\n")
		case node.SoftLineBreak():
			f.write(" ")
		}

	case *ast.String:
		value := node.Value
		if !node.IsRaw() && !node.IsCode() {
			value = unescape(value)
		}
		f.write(string(value))

	case *ast.CodeSpan:
		start := f.runes
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				f.write(string(t.Segment.Value(f.source)))
			case *ast.String:
				f.write(string(t.Value))
			}
		}
		if f.runes > start {
			f.spans = append(f.spans, entities.StyleSpan{Start: start, End: f.runes, Code: true})
		}

	case *ast.Emphasis:
		if node.Level >= 2 {
			f.styled(node, entities.StyleSpan{Bold: true})
		} else {
			f.styled(node, entities.StyleSpan{Italic: true})
		}

	case *extast.Strikethrough:
		f.styled(node, entities.StyleSpan{Strikethrough: true})

	case *ast.Link:
		f.styled(node, entities.StyleSpan{Link: string(node.Destination)})

	case *ast.AutoLink:
		start := f.runes
		f.write(string(node.Label(f.source)))
		f.spans = append(f.spans, entities.StyleSpan{Start: start, End: f.runes, Link: string(node.URL(f.source))})

	case *ast.Image:
		// Inside running text an image shows as its alt text
		f.children(node)

	case *ast.RawHTML, *extast.TaskCheckBox:
		// dropped

	default:
		f.children(node)
	}
}

func unescape(v []byte) []byte {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	return util.ResolveEntityNames(v)
}
