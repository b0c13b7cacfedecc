package parser

import (
	"github.com/yuin/goldmark/ast"
)

// SegmentConfig selects which top-level nodes start a new slide
type SegmentConfig struct {
	// ThematicBreakSplits makes "---" lines slide separators
	ThematicBreakSplits bool
	// HeadingSplitDepth makes headings of this depth open a slide; 0 disables
	HeadingSplitDepth int
	// TitleMaxDepth is the deepest leading heading promoted to slide title
	TitleMaxDepth int
}

// DefaultSegmentConfig splits on thematic breaks only
func DefaultSegmentConfig() SegmentConfig {
	return SegmentConfig{
		ThematicBreakSplits: true,
		HeadingSplitDepth:   0,
		TitleMaxDepth:       2,
	}
}

// Segment is a contiguous run of top-level nodes destined to become one slide
type Segment struct {
	Index int
	// Title is the heading consumed as slide title, nil when there is none
	Title *ast.Heading
	Nodes []ast.Node
}

// Segmenter partitions a document's top-level nodes into slides. It is total:
// every input yields at least one segment and no segment is ever dropped.
type Segmenter struct {
	config SegmentConfig
}

// NewSegmenter creates a new segmenter
func NewSegmenter(config SegmentConfig) *Segmenter {
	if config.TitleMaxDepth <= 0 {
		config.TitleMaxDepth = 2
	}
	return &Segmenter{config: config}
}

// Segment walks the children of root in document order
func (s *Segmenter) Segment(root ast.Node) []Segment {
	segments := []Segment{{}}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		current := &segments[len(segments)-1]

		switch node := n.(type) {
		case *ast.ThematicBreak:
			if s.config.ThematicBreakSplits {
				segments = append(segments, Segment{Index: len(segments)})
				continue
			}

		case *ast.Heading:
			if s.config.HeadingSplitDepth > 0 && node.Level == s.config.HeadingSplitDepth {
				// A break directly followed by a split heading, or a heading
				// at the very top, titles the open segment instead of
				// leaving an empty slide behind.
				if current.isOpen() {
					current.Title = node
				} else {
					segments = append(segments, Segment{Index: len(segments), Title: node})
				}
				continue
			}
		}

		current.Nodes = append(current.Nodes, n)
	}

	for i := range segments {
		segments[i].promoteTitle(s.config.TitleMaxDepth)
	}

	return segments
}

// isOpen reports whether nothing visible has been collected yet
func (seg *Segment) isOpen() bool {
	if seg.Title != nil {
		return false
	}
	for _, n := range seg.Nodes {
		if !isHTMLComment(n) {
			return false
		}
	}
	return true
}

// promoteTitle takes the first visible node as title when it is a shallow
// heading. Comments ahead of it stay in place for the notes extractor.
func (seg *Segment) promoteTitle(maxDepth int) {
	if seg.Title != nil {
		return
	}

	for i, n := range seg.Nodes {
		if isHTMLComment(n) {
			continue
		}
		if h, ok := n.(*ast.Heading); ok && h.Level <= maxDepth {
			seg.Title = h
			seg.Nodes = append(seg.Nodes[:i:i], seg.Nodes[i+1:]...)
		}
		return
	}
}

func isHTMLComment(n ast.Node) bool {
	b, ok := n.(*ast.HTMLBlock)
	return ok && b.HTMLBlockType == ast.HTMLBlockType2
}
