package export

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
	"github.com/fredcamaral/slidemark/internal/test/builders"
)

func TestStyledRuns(t *testing.T) {
	tests := []struct {
		name    string
		content string
		spans   []entities.StyleSpan
		want    []styledRun
	}{
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
		{
			name:    "plain",
			content: "hello",
			want:    []styledRun{{Text: "hello", Style: entities.StyleSpan{End: 5}}},
		},
		{
			name:    "bold middle",
			content: "a bold b",
			spans:   []entities.StyleSpan{{Start: 2, End: 6, Bold: true}},
			want: []styledRun{
				{Text: "a ", Style: entities.StyleSpan{Start: 0, End: 2}},
				{Text: "bold", Style: entities.StyleSpan{Start: 2, End: 6, Bold: true}},
				{Text: " b", Style: entities.StyleSpan{Start: 6, End: 8}},
			},
		},
		{
			name:    "nested styles merge",
			content: "abcd",
			spans: []entities.StyleSpan{
				{Start: 0, End: 4, Italic: true},
				{Start: 1, End: 3, Bold: true, Link: "https://example.com"},
			},
			want: []styledRun{
				{Text: "a", Style: entities.StyleSpan{Start: 0, End: 1, Italic: true}},
				{Text: "bc", Style: entities.StyleSpan{Start: 1, End: 3, Italic: true, Bold: true, Link: "https://example.com"}},
				{Text: "d", Style: entities.StyleSpan{Start: 3, End: 4, Italic: true}},
			},
		},
		{
			name:    "offsets are runes",
			content: "héllo wörld",
			spans:   []entities.StyleSpan{{Start: 6, End: 11, Code: true}},
			want: []styledRun{
				{Text: "héllo ", Style: entities.StyleSpan{Start: 0, End: 6}},
				{Text: "wörld", Style: entities.StyleSpan{Start: 6, End: 11, Code: true}},
			},
		},
		{
			name:    "out of range spans are clamped",
			content: "abc",
			spans:   []entities.StyleSpan{{Start: 2, End: 40, Strikethrough: true}},
			want: []styledRun{
				{Text: "ab", Style: entities.StyleSpan{Start: 0, End: 2}},
				{Text: "c", Style: entities.StyleSpan{Start: 2, End: 3, Strikethrough: true}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, styledRuns(tt.content, tt.spans))
		})
	}
}

func TestFlattenList(t *testing.T) {
	done, open := true, false
	list := &entities.NumberedList{Start: 3, Items: []entities.ListItem{
		{Text: "three", Checked: &done},
		{Text: "four", Sublists: entities.Elements{
			&entities.BulletList{Items: []entities.ListItem{{Text: "inner", Checked: &open}}},
		}},
	}}

	lines := flattenList(list, 0)
	assert.Equal(t, []listLine{
		{Depth: 0, Number: 3, Checked: &done, Marker: "3. [x]", Text: "three"},
		{Depth: 0, Number: 4, Marker: "4.", Text: "four"},
		{Depth: 1, Number: 0, Checked: &open, Marker: "• [ ]", Text: "inner"},
	}, lines)

	assert.Nil(t, flattenList(&entities.Text{Content: "x"}, 0))
}

func TestPlainLines(t *testing.T) {
	tests := []struct {
		name    string
		element entities.SlideElement
		want    []string
	}{
		{name: "text", element: &entities.Text{Content: "a\nb"}, want: []string{"a", "b"}},
		{name: "image falls back to url", element: &entities.Image{URL: "x.png"}, want: []string{"[image: x.png]"}},
		{
			name:    "table",
			element: &entities.Table{Header: []string{"k", "v"}, Rows: [][]string{{"a", "1"}}},
			want:    []string{"k | v", "a | 1"},
		},
		{name: "empty code", element: &entities.Code{}, want: nil},
		{
			name:    "nested list",
			element: &entities.BulletList{Items: []entities.ListItem{{Text: "a", Sublists: entities.Elements{&entities.BulletList{Items: builders.Items("b")}}}}},
			want:    []string{"• a", "  • b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainLines(tt.element))
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "héll…", truncateRunes("héllo world", 5))
	assert.Equal(t, "any", truncateRunes("any", 0))
}

func TestDocumentTitle(t *testing.T) {
	p := builders.MinimalPresentation()
	assert.Equal(t, "Minimal", documentTitle(p, ports.ExportOptions{}))
	assert.Equal(t, "Override", documentTitle(p, ports.ExportOptions{Title: "Override"}))

	p.Metadata.Title = ""
	assert.Equal(t, "Untitled", documentTitle(p, ports.ExportOptions{}))
}
