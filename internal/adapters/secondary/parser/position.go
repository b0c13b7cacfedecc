package parser

import (
	"bytes"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// positionAt converts a byte offset into a 1-based line and rune column
func positionAt(src []byte, offset int) entities.Position {
	if offset > len(src) {
		offset = len(src)
	}
	lineStart := bytes.LastIndexByte(src[:offset], '\n') + 1
	return entities.Position{
		Line:   bytes.Count(src[:offset], []byte{'\n'}) + 1,
		Column: utf8.RuneCount(src[lineStart:offset]) + 1,
	}
}

// blockPosition reports where a top-level block starts: its first line and
// the column of the first non-blank character on that line. Blocks goldmark
// keeps no segments for (thematic breaks, empty containers) have no position.
func blockPosition(n ast.Node, src []byte) *entities.Position {
	offset, ok := firstOffset(n)
	if !ok {
		return nil
	}

	lineStart := bytes.LastIndexByte(src[:offset], '\n') + 1
	col := lineStart
	for col < len(src) && (src[col] == ' ' || src[col] == '\t') {
		col++
	}

	pos := positionAt(src, col)
	return &pos
}

func firstOffset(n ast.Node) (int, bool) {
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start, true
	}
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if offset, ok := firstOffset(c); ok {
			return offset, true
		}
	}
	return 0, false
}
