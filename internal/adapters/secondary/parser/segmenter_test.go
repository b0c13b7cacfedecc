package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
)

func segment(t *testing.T, cfg SegmentConfig, src string) ([]Segment, []byte) {
	t.Helper()
	doc := buildDoc(t, src)
	return NewSegmenter(cfg).Segment(doc.Root), doc.Source
}

func titleOf(seg Segment, source []byte) string {
	if seg.Title == nil {
		return ""
	}
	return plainText(seg.Title, source)
}

func TestSegmenter_Totality(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n",
		"just text",
		"---",
		"<!-- only a comment -->",
		"# Heading",
		"| a |\n|---|\n| 1 |",
	}

	configs := []SegmentConfig{
		DefaultSegmentConfig(),
		{ThematicBreakSplits: false, HeadingSplitDepth: 1},
		{ThematicBreakSplits: true, HeadingSplitDepth: 2},
		{},
	}

	for _, input := range inputs {
		for _, cfg := range configs {
			t.Run(fmt.Sprintf("%q/%+v", input, cfg), func(t *testing.T) {
				segs, _ := segment(t, cfg, input)
				assert.GreaterOrEqual(t, len(segs), 1)
				for i, s := range segs {
					assert.Equal(t, i, s.Index)
				}
			})
		}
	}
}

func TestSegmenter_BreakCount(t *testing.T) {
	for n := 0; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d breaks", n), func(t *testing.T) {
			src := strings.Repeat("para\n\n---\n\n", n) + "end"
			segs, _ := segment(t, DefaultSegmentConfig(), src)
			assert.Len(t, segs, n+1)
		})
	}

	t.Run("leading and trailing breaks keep empty segments", func(t *testing.T) {
		segs, _ := segment(t, DefaultSegmentConfig(), "---\n\ncontent\n\n---\n")
		require.Len(t, segs, 3)
		assert.Empty(t, segs[0].Nodes)
		assert.Len(t, segs[1].Nodes, 1)
		assert.Empty(t, segs[2].Nodes)
	})

	t.Run("headings do not split when disabled", func(t *testing.T) {
		segs, _ := segment(t, DefaultSegmentConfig(), "# A\n\ntext\n\n# B\n\nmore")
		require.Len(t, segs, 1)
		assert.Len(t, segs[0].Nodes, 3)
	})
}

func TestSegmenter_BreaksDisabled(t *testing.T) {
	segs, _ := segment(t, SegmentConfig{}, "a\n\n---\n\nb")
	require.Len(t, segs, 1)
	require.Len(t, segs[0].Nodes, 3)
	assert.IsType(t, &ast.ThematicBreak{}, segs[0].Nodes[1])
}

func TestSegmenter_HeadingSplits(t *testing.T) {
	cfg := SegmentConfig{HeadingSplitDepth: 1, TitleMaxDepth: 2}

	t.Run("first heading titles the first segment", func(t *testing.T) {
		segs, src := segment(t, cfg, "# A\n\ntext\n\n# B\n\nmore")
		require.Len(t, segs, 2)
		assert.Equal(t, "A", titleOf(segs[0], src))
		assert.Equal(t, "B", titleOf(segs[1], src))
		assert.Len(t, segs[0].Nodes, 1)
		assert.Len(t, segs[1].Nodes, 1)
	})

	t.Run("leading content gets its own segment", func(t *testing.T) {
		segs, src := segment(t, cfg, "intro\n\n# A\n\nx")
		require.Len(t, segs, 2)
		assert.Nil(t, segs[0].Title)
		assert.Len(t, segs[0].Nodes, 1)
		assert.Equal(t, "A", titleOf(segs[1], src))
	})

	t.Run("deeper headings stay in the segment", func(t *testing.T) {
		segs, _ := segment(t, cfg, "# A\n\n## sub\n\ntext")
		require.Len(t, segs, 1)
		assert.Len(t, segs[0].Nodes, 2)
	})

	t.Run("comment-only segment is still open", func(t *testing.T) {
		segs, src := segment(t, cfg, "<!-- note -->\n\n# A\n\ntext")
		require.Len(t, segs, 1)
		assert.Equal(t, "A", titleOf(segs[0], src))
		assert.Len(t, segs[0].Nodes, 2)
	})
}

func TestSegmenter_BreakAndHeadingCoalesce(t *testing.T) {
	cfg := SegmentConfig{ThematicBreakSplits: true, HeadingSplitDepth: 1, TitleMaxDepth: 2}

	segs, src := segment(t, cfg, "# A\n\ntext\n\n---\n\n# B\n\nmore\n\n# C")
	require.Len(t, segs, 3)
	assert.Equal(t, "A", titleOf(segs[0], src))
	assert.Equal(t, "B", titleOf(segs[1], src))
	assert.Equal(t, "C", titleOf(segs[2], src))
	assert.Empty(t, segs[2].Nodes)

	t.Run("break after content still splits", func(t *testing.T) {
		segs, _ := segment(t, cfg, "# A\n\ntext\n\n---\n\nloose")
		require.Len(t, segs, 2)
		assert.Nil(t, segs[1].Title)
	})
}

func TestSegmenter_TitlePromotion(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		maxDepth  int
		wantTitle string
		wantNodes int
	}{
		{name: "h1", src: "# Title\n\nbody", maxDepth: 2, wantTitle: "Title", wantNodes: 1},
		{name: "h2", src: "## Title\n\nbody", maxDepth: 2, wantTitle: "Title", wantNodes: 1},
		{name: "h3 too deep", src: "### Title\n\nbody", maxDepth: 2, wantNodes: 2},
		{name: "h3 allowed", src: "### Title\n\nbody", maxDepth: 3, wantTitle: "Title", wantNodes: 1},
		{name: "heading not first", src: "body\n\n# Title", maxDepth: 2, wantNodes: 2},
		{name: "comment before heading", src: "<!-- n -->\n\n# Title\n\nbody", maxDepth: 2, wantTitle: "Title", wantNodes: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, src := segment(t, SegmentConfig{ThematicBreakSplits: true, TitleMaxDepth: tt.maxDepth}, tt.src)
			require.Len(t, segs, 1)
			assert.Equal(t, tt.wantTitle, titleOf(segs[0], src))
			assert.Len(t, segs[0].Nodes, tt.wantNodes)
		})
	}
}
