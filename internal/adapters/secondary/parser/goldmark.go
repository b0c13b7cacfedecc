package parser

import (
	"context"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// Document is a parsed Markdown source: the goldmark tree, the bytes its
// segments point into, and the frontmatter found ahead of the body
type Document struct {
	Root        ast.Node
	Source      []byte
	Frontmatter *Frontmatter
}

// GoldmarkBuilder builds goldmark syntax trees. The configured engine is
// read-only after construction and may be shared between goroutines.
type GoldmarkBuilder struct {
	md goldmark.Markdown
}

// NewGoldmarkBuilder creates a builder with the named extensions enabled.
// Unknown names are ignored; the config layer rejects them earlier.
func NewGoldmarkBuilder(extensions []string) *GoldmarkBuilder {
	var exts []goldmark.Extender
	for _, name := range extensions {
		switch name {
		case entities.ExtensionTable:
			exts = append(exts, extension.Table)
		case entities.ExtensionStrikethrough:
			exts = append(exts, extension.Strikethrough)
		case entities.ExtensionTaskList:
			exts = append(exts, extension.TaskList)
		case entities.ExtensionLinkify:
			exts = append(exts, extension.Linkify)
		}
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAttribute(), // # Heading {layout=two-column}
		),
	)

	return &GoldmarkBuilder{md: md}
}

// Build parses content into a Document. Invalid UTF-8 and undecodable
// frontmatter are reported as ParseSyntaxError with the offending position.
func (b *GoldmarkBuilder) Build(ctx context.Context, content []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !utf8.Valid(content) {
		offset := firstInvalidUTF8(content)
		return nil, &entities.ParseError{
			Kind:     entities.KindParseSyntax,
			Position: positionAt(content, offset),
			Message:  "input is not valid UTF-8",
		}
	}

	fm, body, err := ExtractFrontmatter(content)
	if err != nil {
		return nil, err
	}

	root := b.md.Parser().Parse(text.NewReader(body))

	return &Document{
		Root:        root,
		Source:      body,
		Frontmatter: fm,
	}, nil
}

func firstInvalidUTF8(content []byte) int {
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(content)
}
