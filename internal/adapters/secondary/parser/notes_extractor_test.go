package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
)

func topLevel(doc *Document) []ast.Node {
	var nodes []ast.Node
	for n := doc.Root.FirstChild(); n != nil; n = n.NextSibling() {
		nodes = append(nodes, n)
	}
	return nodes
}

func TestNotesExtractor_Extract(t *testing.T) {
	e := NewNotesExtractor()

	tests := []struct {
		name      string
		src       string
		wantNotes *string
		wantRest  int
	}{
		{
			name:     "no comments",
			src:      "# Title\n\ntext",
			wantRest: 2,
		},
		{
			name:      "prefixed comment",
			src:       "text\n\n<!-- notes: remember to smile -->",
			wantNotes: strPtr("remember to smile"),
			wantRest:  1,
		},
		{
			name:      "marker is case-insensitive",
			src:       "<!--   NOTES:  shout  -->",
			wantNotes: strPtr("shout"),
		},
		{
			name:      "bare comment is notes",
			src:       "<!-- just a thought -->",
			wantNotes: strPtr("just a thought"),
		},
		{
			name:      "document order is kept",
			src:       "<!-- notes: Key point A -->\n\ntext\n\n<!-- Key point B -->",
			wantNotes: strPtr("Key point A\nKey point B"),
			wantRest:  1,
		},
		{
			name:      "multi-line comment",
			src:       "<!--\nnotes:\nline one\nline two\n-->",
			wantNotes: strPtr("line one\nline two"),
		},
		{
			name:      "empty comment yields empty notes",
			src:       "<!-- -->\n\ntext",
			wantNotes: strPtr(""),
			wantRest:  1,
		},
		{
			name:      "empty marker",
			src:       "<!-- notes: -->",
			wantNotes: strPtr(""),
		},
		{
			name:     "inline comment is not a notes block",
			src:      "text <!-- hidden --> more",
			wantRest: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := buildDoc(t, tt.src)
			notes, rest := e.Extract(topLevel(doc), doc.Source)

			if tt.wantNotes == nil {
				assert.Nil(t, notes)
			} else {
				require.NotNil(t, notes)
				assert.Equal(t, *tt.wantNotes, *notes)
			}
			assert.Len(t, rest, tt.wantRest)
		})
	}
}

func TestNotesExtractor_Idempotent(t *testing.T) {
	e := NewNotesExtractor()
	doc := buildDoc(t, "# T\n\n<!-- notes: a -->\n\npara\n\n<!-- b -->\n\n- item")
	nodes := topLevel(doc)

	notes1, rest1 := e.Extract(nodes, doc.Source)
	notes2, rest2 := e.Extract(nodes, doc.Source)

	require.NotNil(t, notes1)
	require.NotNil(t, notes2)
	assert.Equal(t, *notes1, *notes2)
	assert.Equal(t, rest1, rest2)
	assert.Len(t, nodes, 5, "input must not be modified")

	notes3, rest3 := e.Extract(rest1, doc.Source)
	assert.Nil(t, notes3, "extracting from the residue finds nothing more")
	assert.Equal(t, rest1, rest3)
}

func strPtr(s string) *string {
	return &s
}
